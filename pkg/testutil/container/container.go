// Package container starts throwaway backing services for integration tests.
// Each helper skips the test under -short, retries the first ping until the
// service accepts connections and terminates the container in t.Cleanup.
package container

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/testcontainers/testcontainers-go"
)

const readyTimeout = 30 * time.Second

func start[C testcontainers.Container](t testing.TB, run func(context.Context) (C, error)) C {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	c, err := run(context.Background())
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})
	return c
}

// waitPing retries ping with exponential backoff for readyTimeout.
func waitPing(t testing.TB, name string, ping func(context.Context) error) {
	t.Helper()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = readyTimeout
	err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return ping(ctx)
	}, b)
	if err != nil {
		t.Fatalf("%s not ready after %v: %v", name, readyTimeout, err)
	}
}
