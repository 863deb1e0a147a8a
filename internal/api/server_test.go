package api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/surebet/internal/allocator"
	"github.com/yourusername/surebet/internal/health"
	"github.com/yourusername/surebet/internal/ledger"
	"github.com/yourusername/surebet/internal/repository"
)

func newTestServer(t *testing.T, port int) (*Server, *health.Checker) {
	t.Helper()
	cfg := testConfig()
	cfg.Server.Port = port
	log := testLogger()
	handler := NewHandler(
		allocator.New(allocator.WithMaxLegs(cfg.Allocator.MaxLegs)),
		ledger.NewService(repository.NewMemoryLedgerRepository(), log),
		log,
	)
	checker := health.NewChecker(health.Config{ServiceName: "surebet", Store: cfg.Ledger.Store, Logger: log})
	return NewServer(cfg, handler, checker, log), checker
}

func runServer(ctx context.Context, srv *Server) <-chan error {
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

func TestServerRun(t *testing.T) {
	t.Run("closed server returns nil", func(t *testing.T) {
		srv, checker := newTestServer(t, 0)
		done := runServer(context.Background(), srv)

		require.NoError(t, srv.server.Close())
		assert.NoError(t, waitRun(t, done))
		assert.False(t, checker.IsReady())
	})

	t.Run("cancelled context shuts down cleanly", func(t *testing.T) {
		srv, checker := newTestServer(t, 0)
		ctx, cancel := context.WithCancel(context.Background())
		done := runServer(ctx, srv)

		cancel()
		assert.NoError(t, waitRun(t, done))
		assert.False(t, checker.IsReady())
	})

	t.Run("listen failure is returned", func(t *testing.T) {
		taken, err := net.Listen("tcp", ":0")
		require.NoError(t, err)
		defer taken.Close()

		srv, checker := newTestServer(t, taken.Addr().(*net.TCPAddr).Port)
		err = waitRun(t, runServer(context.Background(), srv))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api server:")
		assert.NotContains(t, err.Error(), "%!w")
		assert.False(t, checker.IsReady())
	})
}
