// Package testutil starts throwaway Postgres and Redis containers for
// integration tests. Every fixture skips its test under -short.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const startupTimeout = 30 * time.Second

// endpoint is where a started container can be reached from the test process.
type endpoint struct {
	host string
	port int
}

// tcpPort is the container-side port spec for a numeric port.
func tcpPort(port string) nat.Port {
	return nat.Port(port + "/tcp")
}

// startContainer runs image with env, waits for readyLog to appear
// readyCount times, and registers termination with t.Cleanup.
func startContainer(t *testing.T, image, port string, env map[string]string, readyLog string, readyCount int) endpoint {
	t.Helper()
	if testing.Short() {
		t.Skipf("skipping %s integration test in -short mode", image)
	}
	ctx := context.Background()
	start := time.Now()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(tcpPort(port))},
			Env:          env,
			WaitingFor: wait.ForLog(readyLog).
				WithOccurrence(readyCount).
				WithStartupTimeout(startupTimeout),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v [%s]", image, err, time.Since(start))
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("resolving %s host: %v", image, err)
	}
	mapped, err := c.MappedPort(ctx, tcpPort(port))
	if err != nil {
		t.Fatalf("resolving %s port %s: %v", image, port, err)
	}
	t.Logf("%s ready at %s:%d [%s]", image, host, mapped.Int(), time.Since(start))
	return endpoint{host: host, port: mapped.Int()}
}
