// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// fakeHTTPServer blocks in ListenAndServe until Shutdown is called,
// mirroring *http.Server's behavior.
type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	shutdowns   atomic.Int32
	done        chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{done: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.done
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.done)
	return f.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- svc.Serve(ctx) }()

	// Give the serve goroutine a moment to start listening.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if got := server.shutdowns.Load(); got != 1 {
		t.Errorf("Shutdown called %d times, want 1", got)
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve returned %v, want wrapped listen error", err)
	}
}

func TestHTTPServiceShutdownFailure(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	server.shutdownErr = errors.New("drain timed out")
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		if err == nil || !errors.Is(err, server.shutdownErr) {
			t.Errorf("Serve returned %v, want wrapped shutdown error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestHTTPServiceString(t *testing.T) {
	t.Parallel()

	if got := NewHTTPService(newFakeHTTPServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}
