package workload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteCSV_NoHeaderRow(t *testing.T) {
	// GIVEN two synthesized rows
	rows := []Row{
		{VMID: "v1", SubID: "s1", DeploymentID: "d", Created: 0, Deleted: 5, Category: "cat", Cores: 2, Memory: 4},
		{VMID: "v2", SubID: "s2", DeploymentID: "d", Created: 1, Deleted: 6, Category: "cat", Cores: 1, Memory: 2, TargetVMID: "v1"},
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.csv")

	// WHEN written
	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	// THEN the file has exactly 2 lines, with no header, and the
	// target-carrying row has 12 comma-separated fields
	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 data lines, got %d: %v", len(lines), lines)
	}
	if len(strings.Split(lines[1], ",")) != 12 {
		t.Errorf("expected 12 fields on targeted row, got %q", lines[1])
	}
}
