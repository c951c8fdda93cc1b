package cli

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanFlags(t *testing.T) {
	t.Run("parses a full command line", func(t *testing.T) {
		flags, err := ParsePlanFlags([]string{
			"-region", "karnataka", "-crops", "Rice, Ragi,", "-land", "12.5",
			"-format", "pdf", "-offline", "-timeout", "5s",
		}, io.Discard)
		require.NoError(t, err)

		assert.Equal(t, "karnataka", flags.Region)
		assert.Equal(t, []string{"Rice", "Ragi"}, flags.Crops)
		assert.Equal(t, 12.5, flags.Land)
		assert.Equal(t, "pdf", flags.Format)
		assert.True(t, flags.Offline)
		assert.Equal(t, 5*time.Second, flags.Timeout)
	})

	t.Run("defaults", func(t *testing.T) {
		flags, err := ParsePlanFlags([]string{"-region", "goa", "-crops", "Rice", "-land", "1"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "text", flags.Format)
		assert.Equal(t, time.Minute, flags.Timeout)
		assert.Equal(t, "config.yaml", flags.Config)
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing region", []string{"-crops", "Rice", "-land", "1"}, "-region is required"},
		{"missing crops", []string{"-region", "goa", "-land", "1"}, "-crops is required"},
		{"zero land", []string{"-region", "goa", "-crops", "Rice"}, "-land must be positive"},
		{"out and export", []string{"-region", "goa", "-crops", "Rice", "-land", "1", "-out", "r.txt", "-export"}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlanFlags(tt.args, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("unknown flag", func(t *testing.T) {
		_, err := ParsePlanFlags([]string{"-bogus"}, io.Discard)
		assert.Error(t, err)
	})
}
