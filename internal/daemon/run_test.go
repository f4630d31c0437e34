package daemon_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lattice/internal/daemon"
	"lattice/internal/ipc"
	"lattice/internal/testsupport"
)

func TestRunServesUntilCanceled(t *testing.T) {
	port := testsupport.FreePort(t)
	cfg, _ := testsupport.NewConfig(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemon.Run(ctx, cfg, daemon.Options{})
	}()

	deadline := time.Now().Add(5 * time.Second)
	var client *ipc.Client
	for time.Now().Before(deadline) {
		var err error
		client, err = ipc.Dial(cfg.ServerEndpoint())
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if client == nil {
		t.Fatal("service never became reachable")
	}
	if _, err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	_ = client.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	pidPath := filepath.Join(cfg.Logging.Dir, fmt.Sprintf("latticed-%d.pid", port))
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed, stat err: %v", err)
	}
}

func TestRunRejectsUnknownModule(t *testing.T) {
	cfg, _ := testsupport.NewConfig(t, testsupport.FreePort(t))

	err := daemon.Run(context.Background(), cfg, daemon.Options{Module: "lattice.unknown"})
	if err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestRunRemoteShutdownStopsService(t *testing.T) {
	port := testsupport.FreePort(t)
	cfg, _ := testsupport.NewConfig(t, port)

	done := make(chan error, 1)
	go func() {
		done <- daemon.Run(context.Background(), cfg, daemon.Options{})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(cfg.ServerEndpoint())
		if err != nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		if _, err := client.Shutdown(); err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
		_ = client.Close()
		break
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop after remote shutdown")
	}
}
