package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/eshaffer321/cropplanner/internal/adapters/render"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
	"github.com/eshaffer321/cropplanner/internal/domain/selector"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/exports"
)

// PlanDeps are the collaborators of RunPlan. Zero fields are built from
// the configuration.
type PlanDeps struct {
	Collaborator planner.Collaborator
	Exports      exports.Store
	Logger       *slog.Logger
	Now          func() time.Time
}

// RunPlan runs one planning session to completion and writes the report.
func RunPlan(ctx context.Context, flags PlanFlags, deps PlanDeps, stdout, stderr io.Writer) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	format, err := render.NewRegistry().Lookup(flags.Format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, flags.Timeout)
	defer cancel()

	session := planner.NewSession("cli", catalog.Default(), deps.Collaborator, planner.Options{
		Offline: flags.Offline,
		Logger:  logger,
	})
	session.Start(ctx)
	defer session.Close()

	if _, err := session.ChooseRegion(ctx, flags.Region); err != nil {
		return err
	}
	st, err := session.ChooseCrops(ctx, flags.Crops...)
	if err != nil {
		return err
	}
	if st.Phase != selector.CropChosen {
		return fmt.Errorf("invalid selection: %s", invalidInput(st))
	}
	if _, err := session.SetLandArea(ctx, flags.Land); err != nil {
		return err
	}
	if _, err := session.Submit(ctx); err != nil {
		return err
	}

	st, err = session.Settle(ctx)
	if err != nil {
		return fmt.Errorf("waiting for allocation: %w", err)
	}
	if flags.Summary {
		PrintHeader(stderr, st.Region, st.Offline)
		PrintPlanSummary(stderr, st)
	}
	for _, n := range st.Notices {
		logger.Warn(n.Message, "kind", string(n.Kind), "crop", n.Crop)
	}

	doc, err := planner.BuildReport(session.Catalog(), st, now())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := format.Renderer.Render(&buf, doc); err != nil {
		return fmt.Errorf("rendering %s report: %w", format.Name, err)
	}

	switch {
	case flags.Export:
		if deps.Exports == nil {
			return fmt.Errorf("no export sink configured")
		}
		info, err := deps.Exports.Put(ctx, format.FileName(doc), &buf, exports.PutOptions{
			ContentType: format.ContentType,
			Metadata:    map[string]string{"region": doc.Region, "format": format.Name},
		})
		if err != nil {
			return fmt.Errorf("exporting report: %w", err)
		}
		logger.Info("report exported", "key", info.Key, "driver", string(deps.Exports.Driver()), "location", info.Location)
		fmt.Fprintln(stdout, info.Key)
	case flags.Out != "":
		if err := os.WriteFile(flags.Out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", "path", flags.Out, "format", format.Name)
	default:
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func invalidInput(st selector.State) string {
	for i := len(st.Notices) - 1; i >= 0; i-- {
		if st.Notices[i].Kind == selector.NoticeInvalidInput {
			return st.Notices[i].Message
		}
	}
	return "no valid crop selected"
}
