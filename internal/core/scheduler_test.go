package core

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestStartSpoolSweeper_SweepsOnStart(t *testing.T) {
	svc := newTestService(t, nil, nil)

	path, _, err := svc.spool.Save(strings.NewReader("left behind"), 0)
	if err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.StartSpoolSweeper(ctx, SweepConfig{MaxAge: time.Hour, CheckInterval: time.Hour})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale spool file should be removed, stat error = %v", err)
	}
}
