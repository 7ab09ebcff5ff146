package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendline/delinq/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "init")
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "schedule")
}

func TestInit_WritesConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "delinq.yaml")
	require.FileExists(t, path)
	assert.DirExists(t, filepath.Join(dir, "logs"))

	t.Setenv("DELINQ_WAREHOUSE_DSN", "postgres://warehouse")
	t.Setenv("DELINQ_REPORTING_DSN", "postgres://reporting")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2009, cfg.Calendar.HolidayBaseYear)
	assert.Equal(t, []int64{1, 34, 57, 312}, cfg.Loans.ExcludedIDs)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "delinq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	_, err := execute(t, "init", dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestRun_RejectsUnknownMode(t *testing.T) {
	_, err := execute(t, "run", "weekly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestSchedule_RejectsUnknownMode(t *testing.T) {
	_, err := execute(t, "schedule", "monthly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestApplyLogLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	applyLogLevel("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	applyLogLevel("")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	applyLogLevel("nonsense")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
