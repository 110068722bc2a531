package jobmgr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestStartAsyncHandshake(t *testing.T) {
	m := NewManager(nil)

	err := m.StartAsync("task", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// once StartAsync returns the job is registered and stoppable
	if got := m.List(); len(got) != 1 || got[0] != "task" {
		t.Errorf("List() = %v, want [task]", got)
	}
	if err := m.Stop("task"); err != nil {
		t.Fatal(err)
	}
}

func TestStartAsyncDuplicateName(t *testing.T) {
	m := NewManager(nil)

	park := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	if err := m.StartAsync("task", park); err != nil {
		t.Fatal(err)
	}
	defer m.Stop("task")

	if err := m.StartAsync("task", park); err == nil {
		t.Error("starting a second job under the same name must fail")
	}
}

func TestStopCancelsAndWaits(t *testing.T) {
	m := NewManager(nil)

	var finished atomic.Bool
	err := m.StartAsync("task", func(ctx context.Context) error {
		<-ctx.Done()
		finished.Store(true)
		return ctx.Err()
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Stop("task"); err != nil {
		t.Fatal(err)
	}
	// Stop must not return before the runner has
	if !finished.Load() {
		t.Error("Stop returned before the runner quiesced")
	}
	if got := m.List(); len(got) != 0 {
		t.Errorf("List() after Stop = %v, want empty", got)
	}
}

func TestStopUnknownJob(t *testing.T) {
	m := NewManager(nil)
	if err := m.Stop("ghost"); err == nil {
		t.Error("stopping an unknown job must fail")
	}
}

func TestAutoRemovalAndReporting(t *testing.T) {
	var mu sync.Mutex
	var reports []string
	done := make(chan struct{})
	m := NewManager(func(msg string) {
		mu.Lock()
		reports = append(reports, msg)
		mu.Unlock()
		if strings.HasPrefix(msg, "error:") {
			close(done)
		}
	})

	boom := errors.New("connection reset")
	if err := m.StartAsync("flaky", func(ctx context.Context) error {
		return boom
	}); err != nil {
		t.Fatal(err)
	}
	<-done

	mu.Lock()
	defer mu.Unlock()
	if reports[0] != "running:flaky" {
		t.Errorf("reports[0] = %q, want running:flaky", reports[0])
	}
	if reports[1] != "error:flaky:connection reset" {
		t.Errorf("reports[1] = %q, want the error report", reports[1])
	}
}

func TestCancelledJobReportsDone(t *testing.T) {
	done := make(chan string, 1)
	m := NewManager(func(msg string) {
		if msg != "running:graceful" {
			done <- msg
		}
	})

	if err := m.StartAsync("graceful", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop("graceful"); err != nil {
		t.Fatal(err)
	}

	// a context-cancelled runner is a clean shutdown, not an error
	if msg := <-done; msg != "done:graceful" {
		t.Errorf("report = %q, want done:graceful", msg)
	}
}

func TestStatus(t *testing.T) {
	m := NewManager(nil)
	if got := m.Status(); got != "No jobs are running." {
		t.Errorf("Status() = %q", got)
	}

	if err := m.StartAsync("task", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	defer m.Stop("task")

	if got := m.Status(); !strings.Contains(got, "task") {
		t.Errorf("Status() = %q, want it to mention task", got)
	}
}
