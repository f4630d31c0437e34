package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lattice/internal/ipc"
	"lattice/internal/logging"
	"lattice/internal/service"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	server     *ipc.Server
	port       string
}

// setupCLITestEnv starts an in-process service and writes a config file
// pointing at it, so commands exercise the reconnect path instead of
// spawning a real process.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	registry := service.NewRegistry(logging.NewNop())
	if err := service.RegisterGeometry(registry); err != nil {
		t.Fatalf("register geometry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, "127.0.0.1:0", registry, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	_, port, err := net.SplitHostPort(srv.Addr())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "lattice", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[server]
address = "127.0.0.1"
port = %s

[logging]
dir = %q

[history]
enabled = true
path = %q
`, port, filepath.Join(base, "logs"), filepath.Join(base, "history.db"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	env := &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		server:     srv,
		port:       port,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
