package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "extractor")
	assert.Contains(t, out, "process")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "extractor dev")
}

func TestProcessRequiresInput(t *testing.T) {
	_, err := execute(t, "process")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestProcessRejectsUnknownType(t *testing.T) {
	_, err := execute(t, "process", "some.pdf", "--type", "grocery_list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestRegionsRequiresInput(t *testing.T) {
	_, err := execute(t, "regions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input image")
}

func TestQualityCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.json")
	fields := map[string]string{
		"unit_number": "101",
		"tenant_name": "Acme Corp",
		"rent_amount": "$1,500.00",
	}
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := execute(t, "quality", path, "--type", "rent_roll")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Contains(t, report, "overall_score")
	assert.Contains(t, report, "quality_grade")
}

func TestQualityRequiresType(t *testing.T) {
	_, err := execute(t, "quality", "whatever.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--type is required")
}
