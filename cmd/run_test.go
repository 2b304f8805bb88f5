package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/i94-warehouse/internal/config"
	"github.com/sells-group/i94-warehouse/internal/quality"
	"github.com/sells-group/i94-warehouse/internal/runlog"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	c, err := config.Load()
	require.NoError(t, err)
	return c
}

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringSlice("datasets", nil, "")
	cmd.Flags().String("output", "", "")
	cmd.Flags().String("on-empty", "", "")
	return cmd
}

func TestApplyFlags_Overrides(t *testing.T) {
	c := loadDefaults(t)
	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Parse([]string{
		"--datasets", "temperature,airports",
		"--output", "s3://warehouse/i94",
		"--on-empty", "warn",
	}))

	require.NoError(t, applyFlags(cmd, c))
	assert.Equal(t, []string{"temperature", "airports"}, c.Pipeline.Datasets)
	assert.Equal(t, "s3://warehouse/i94", c.Output.Root)
	assert.Equal(t, "warn", c.Quality.OnEmpty)
}

func TestApplyFlags_UnsetFlagsKeepConfig(t *testing.T) {
	c := loadDefaults(t)
	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Parse(nil))

	require.NoError(t, applyFlags(cmd, c))
	assert.Empty(t, c.Pipeline.Datasets)
	assert.Equal(t, "output", c.Output.Root)
	assert.Equal(t, "fail", c.Quality.OnEmpty)
}

func TestApplyFlags_MissingFlags(t *testing.T) {
	c := loadDefaults(t)
	require.NoError(t, applyFlags(&cobra.Command{Use: "bare"}, c))
	assert.Equal(t, "output", c.Output.Root)
}

func TestValidate_ReturnsGate(t *testing.T) {
	c := loadDefaults(t)
	c.Quality.OnEmpty = "warn"

	gate, err := validate(c)
	require.NoError(t, err)
	assert.Equal(t, quality.Warn, gate.Policy())
}

func TestValidate_RejectsUnknownRuleColumn(t *testing.T) {
	c := loadDefaults(t)
	c.Quality.Required = map[string][]string{"immigration": {"shoe_size"}}

	_, err := validate(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shoe_size")
}

func TestS3Options(t *testing.T) {
	c := loadDefaults(t)
	c.Storage.S3.AccessKeyID = "AKID"
	c.Storage.S3.SecretAccessKey = "secret"
	c.Storage.S3.Endpoint = "http://localhost:9000"
	c.Storage.S3.ForcePathStyle = true

	opts := s3Options(c)
	assert.Equal(t, "us-west-2", opts.Region)
	assert.Equal(t, "AKID", opts.AccessKeyID)
	assert.Equal(t, "secret", opts.SecretAccessKey)
	assert.Equal(t, "http://localhost:9000", opts.Endpoint)
	assert.True(t, opts.ForcePathStyle)
}

func TestOpenRunLog_SQLite(t *testing.T) {
	c := loadDefaults(t)
	c.RunLog.DSN = filepath.Join(t.TempDir(), "runs.db")

	runs, err := openRunLog(context.Background(), c)
	require.NoError(t, err)
	defer runs.Close() //nolint:errcheck

	recent, err := runs.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestOpenRunLog_UnknownDriver(t *testing.T) {
	c := loadDefaults(t)
	c.RunLog.Driver = "mysql"

	_, err := openRunLog(context.Background(), c)
	assert.Error(t, err)
}

func TestFormatTables(t *testing.T) {
	var buf bytes.Buffer
	formatTables(&buf, "run-1", []runlog.TableResult{
		{Table: "immigration", Rows: 2, Passed: true, Location: "/out/immigration"},
		{Table: "temperature", Rows: 0, Passed: false, Location: "/out/temperature"},
	})

	output := buf.String()
	assert.Contains(t, output, "run-1")
	assert.Contains(t, output, "TABLE")
	assert.Contains(t, output, "immigration")
	assert.Contains(t, output, "passed")
	assert.Contains(t, output, "FAILED")
	assert.Contains(t, output, "/out/temperature")
}

func TestFormatChecks(t *testing.T) {
	var buf bytes.Buffer
	formatChecks(&buf, []quality.Check{
		{Table: "airports", Rows: 2, Passed: true},
		{Table: "demographics", Rows: 0},
	})

	output := buf.String()
	assert.Contains(t, output, "airports")
	assert.Contains(t, output, "passed")
	assert.Contains(t, output, "demographics")
	assert.Contains(t, output, "FAILED")
}
