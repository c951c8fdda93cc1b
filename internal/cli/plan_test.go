package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/cropplanner/internal/adapters/agriapi"
	"github.com/eshaffer321/cropplanner/internal/devserver"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/exports"
)

var planNow = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func planFlags(extra ...string) PlanFlags {
	args := append([]string{"-region", "karnataka", "-crops", "Rice,Ragi", "-land", "10"}, extra...)
	flags, err := ParsePlanFlags(args, io.Discard)
	if err != nil {
		panic(err)
	}
	return flags
}

func TestRunPlan_OfflineToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := RunPlan(context.Background(), planFlags("-summary"), PlanDeps{Logger: quietLogger(), Now: planNow}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Crop Optimization Report")
	assert.Contains(t, stdout.String(), "Region: Karnataka")
	assert.Contains(t, stdout.String(), "Rice: unavailable")
	assert.Contains(t, stderr.String(), "cropplanner: Karnataka (OFFLINE mode)")
}

func TestRunPlan_AgainstDevServer(t *testing.T) {
	fixture, err := devserver.DefaultFixture()
	require.NoError(t, err)
	stub := httptest.NewServer(devserver.New(fixture, quietLogger(), nil).Handler())
	t.Cleanup(stub.Close)

	var stdout bytes.Buffer
	err = RunPlan(context.Background(), planFlags("-format", "json"), PlanDeps{
		Collaborator: agriapi.NewClient(stub.URL, 5*time.Second),
		Logger:       quietLogger(),
		Now:          planNow,
	}, &stdout, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), `"value": "₹1850"`)
	assert.Contains(t, stdout.String(), `"value": "₹3150"`)
}

func TestRunPlan_InvalidCrop(t *testing.T) {
	flags, err := ParsePlanFlags([]string{"-region", "karnataka", "-crops", "Wheat", "-land", "10"}, io.Discard)
	require.NoError(t, err)

	err = RunPlan(context.Background(), flags, PlanDeps{Logger: quietLogger()}, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not grown in Karnataka")
}

func TestRunPlan_UnknownFormat(t *testing.T) {
	err := RunPlan(context.Background(), planFlags("-format", "docx"), PlanDeps{Logger: quietLogger()}, io.Discard, io.Discard)
	assert.Error(t, err)
}

func TestRunPlan_Export(t *testing.T) {
	store := exports.NewMemory()
	var stdout bytes.Buffer

	deps := PlanDeps{Exports: store, Logger: quietLogger(), Now: planNow}
	err := RunPlan(context.Background(), planFlags("-export", "-format", "xlsx"), deps, &stdout, io.Discard)
	require.NoError(t, err)

	key := "report_karnataka_rice+ragi_20240501-093000.xlsx"
	assert.Equal(t, key+"\n", stdout.String())

	info, body, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, "xlsx", info.Metadata["format"])

	err = RunPlan(context.Background(), planFlags("-export", "-format", "xlsx"), deps, io.Discard, io.Discard)
	assert.ErrorIs(t, err, exports.ErrExists)
}

func TestRunPlan_OutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.txt")

	err := RunPlan(context.Background(), planFlags("-out", path), PlanDeps{Logger: quietLogger(), Now: planNow}, io.Discard, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Allocation and Fertilizer (%)")
}

func TestWiring(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, NewCollaborator(cfg))

	cfg.Collaborator.BaseURL = "http://localhost:5000"
	assert.NotNil(t, NewCollaborator(cfg))

	cfg.Exports = config.ExportsConfig{Driver: "s3", S3: config.S3Config{Bucket: "b", Prefix: "reports", PathStyle: true}}
	ec := ExportConfig(cfg)
	assert.Equal(t, "s3", ec.Driver)
	assert.Equal(t, "b", ec.S3.Bucket)
	assert.True(t, ec.S3.PathStyle)
}
