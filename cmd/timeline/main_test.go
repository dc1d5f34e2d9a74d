package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const snapshotYAML = `
project:
  id: web
  name: Website
  start_date: "2025-01-01"
  end_date: "2025-01-31"
  estimated_hours: 80
phases:
  - id: design
    name: Design
    end_date: "2025-01-10"
    time_allocation: 40
  - id: build
    name: Build
    due_date: "2025-01-24"
    time_allocation: 30
holidays:
  - id: ny
    name: New Year
    start_date: "2025-01-01"
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPlan_Table(t *testing.T) {
	path := writeFile(t, "web.yaml", snapshotYAML)

	out, err := run(t, "plan", "--file", path, "--as-of", "2025-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Window [2025-01-01, 2025-01-31]")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "(unallocated)")
	assert.Contains(t, out, "10.00h remaining")

	lines := strings.Split(out, "\n")
	var design string
	for _, l := range lines {
		if strings.HasPrefix(l, "Design") {
			design = l
		}
	}
	// Jan 1 is a holiday: 7 working days for 40h
	assert.Contains(t, design, "  7  ")
	assert.Contains(t, design, "5.71")
}

func TestPlan_JSON(t *testing.T) {
	path := writeFile(t, "web.yaml", snapshotYAML)

	out, err := run(t, "plan", "-f", path, "--as-of", "2025-01-01", "--json", "--exclude", "build")
	require.NoError(t, err)

	var got struct {
		Allocation struct {
			Segments []struct {
				PhaseID     string `json:"phase_id"`
				Trailing    bool   `json:"trailing"`
				WorkingDays int    `json:"working_days"`
			} `json:"segments"`
		} `json:"allocation"`
		Budget struct {
			TotalAllocated float64 `json:"total_allocated"`
		} `json:"budget"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Allocation.Segments, 3)
	assert.Equal(t, "design", got.Allocation.Segments[0].PhaseID)
	assert.True(t, got.Allocation.Segments[2].Trailing)
	assert.Equal(t, 40.0, got.Budget.TotalAllocated)
}

func TestPlan_Errors(t *testing.T) {
	_, err := run(t, "plan")
	assert.Error(t, err)

	_, err = run(t, "plan", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, "bad.json", `{"project": {"id": "x", "start_date": "2025-02-01", "end_date": "2025-01-01"}}`)
	_, err = run(t, "plan", "--file", path)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	out, err := run(t, "expand", "--type", "monthly", "--pattern", "dayOfWeek", "--week", "5",
		"--weekday", "fri", "--from", "2025-01-01", "--to", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-31\n2025-02-28\n2025-03-28\n", out)

	out, err = run(t, "expand", "--type", "monthly", "--pattern", "dayOfWeek", "--week", "5",
		"--weekday", "fri", "--from", "2025-01-01", "--to", "2025-03-31", "--periods")
	require.NoError(t, err)
	assert.Equal(t, "[2025-01-01, 2025-01-30]\n[2025-01-31, 2025-02-27]\n[2025-02-28, 2025-03-27]\n", out)
}

func TestExpand_Invalid(t *testing.T) {
	_, err := run(t, "expand", "--type", "weekly", "--from", "2025-01-01", "--to", "2025-01-31")
	assert.Error(t, err)

	_, err = run(t, "expand", "--weekday", "funday", "--from", "2025-01-01", "--to", "2025-01-31")
	assert.Error(t, err)
}
