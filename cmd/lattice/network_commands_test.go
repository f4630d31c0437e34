package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNetworkGridInfoAndDot(t *testing.T) {
	tmp := t.TempDir()
	gridPath := filepath.Join(tmp, "grid.json")

	out, _, err := runCLI(t, []string{"network", "grid", gridPath, "--nx", "3", "--ny", "2"}, "")
	if err != nil {
		t.Fatalf("network grid: %v", err)
	}
	requireContains(t, out, "6 nodes")
	requireContains(t, out, "7 edges")

	out, _, err = runCLI(t, []string{"network", "info", gridPath}, "")
	if err != nil {
		t.Fatalf("network info: %v", err)
	}
	requireContains(t, out, "Nodes: 6")

	dotPath := filepath.Join(tmp, "grid.dot")
	out, _, err = runCLI(t, []string{"network", "dot", gridPath, "--output", dotPath}, "")
	if err != nil {
		t.Fatalf("network dot: %v", err)
	}
	requireContains(t, out, "Wrote")

	data, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	requireContains(t, string(data), "graph grid")
}

func TestNetworkDotMissingFile(t *testing.T) {
	_, _, err := runCLI(t, []string{"network", "dot", filepath.Join(t.TempDir(), "missing.json")}, "")
	if err == nil {
		t.Fatal("expected error for missing network file")
	}
}
