package main

import (
	"testing"
)

func TestPingCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ping"}, env.configPath)
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	requireContains(t, out, "is responding")
}

func TestPingCommandNoService(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.Close()

	_, _, err := runCLI(t, []string{"ping"}, env.configPath)
	if err == nil {
		t.Fatal("expected error when no service is listening")
	}
}

func TestShutdownCommandWithoutService(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.Close()

	out, _, err := runCLI(t, []string{"shutdown"}, env.configPath)
	if err != nil {
		t.Fatalf("shutdown must not fail without a service: %v", err)
	}
	requireContains(t, out, "No service listening")
}
