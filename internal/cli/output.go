package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
	"github.com/eshaffer321/cropplanner/internal/domain/report"
	"github.com/eshaffer321/cropplanner/internal/domain/selector"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, region string, offline bool) {
	mode := "ONLINE"
	if offline {
		mode = "OFFLINE"
	}
	fmt.Fprintf(w, "cropplanner: %s (%s mode)\n", catalog.DisplayName(region), mode)
}

// PrintPlanSummary prints the allocation and any notices
func PrintPlanSummary(w io.Writer, st selector.State) {
	fmt.Fprintln(w, strings.Repeat("-", 60))

	if st.Result != nil {
		for _, share := range st.Result.Shares {
			price := report.Unavailable
			if q, ok := st.Quotes[share.Crop]; ok {
				price = report.FormatQuote(q)
			}
			fmt.Fprintf(w, "%-12s %10s %8s  %s\n",
				share.Crop,
				report.FormatArea(share.Area),
				report.FormatPercent(share.Percent),
				price)
		}
		fmt.Fprintf(w, "Total: %s\n", report.FormatArea(st.Result.TotalArea()))
	}

	// Print notices if any
	if len(st.Notices) > 0 {
		fmt.Fprintln(w, "\nNotices:")
		for _, n := range st.Notices {
			if n.Crop != "" {
				fmt.Fprintf(w, "  - [%s] %s: %s\n", n.Kind, n.Crop, n.Message)
				continue
			}
			fmt.Fprintf(w, "  - [%s] %s\n", n.Kind, n.Message)
		}
	}
}
