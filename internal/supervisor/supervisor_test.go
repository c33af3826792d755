// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// blockingService runs until its context is canceled, counting starts.
type blockingService struct {
	starts atomic.Int64
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree := NewTree(DefaultTreeConfig())
	svc := &blockingService{}
	tree.AddAPIService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for svc.starts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("service never started")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree stopped with %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

type mockServer struct {
	started  chan struct{}
	shutdown atomic.Bool
	release  chan struct{}
}

func newMockServer() *mockServer {
	return &mockServer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (m *mockServer) ListenAndServe() error {
	close(m.started)
	<-m.release
	return nil
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.shutdown.Store(true)
	close(m.release)
	return nil
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	server := newMockServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-server.started:
	case <-time.After(time.Second):
		t.Fatal("server never started")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !server.shutdown.Load() {
		t.Error("Shutdown was never called")
	}
}

type failingServer struct{}

func (failingServer) ListenAndServe() error              { return errors.New("port in use") }
func (failingServer) Shutdown(ctx context.Context) error { return nil }

func TestHTTPServerServiceStartupFailure(t *testing.T) {
	svc := NewHTTPServerService(failingServer{}, time.Second)
	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("Serve swallowed the listen error")
	}
}
