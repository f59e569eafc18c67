package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLatestValueOnly(t *testing.T) {
	src := NewSource(0)
	rcv := src.Subscribe()
	defer rcv.Close()

	src.Send(1)
	src.Send(2)
	src.Send(3)

	v, err := rcv.Next(context.Background())
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if v != 3 {
		t.Errorf("expected latest value 3, got %d", v)
	}

	// Nothing new: Next must block until the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := rcv.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline, got %v", err)
	}
}

func TestSendNeverBlocks(t *testing.T) {
	src := NewSource(0)
	// Attach a receiver that never reads.
	rcv := src.Subscribe()
	defer rcv.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			src.Send(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a slow receiver")
	}
}

func TestNextWakesWaiter(t *testing.T) {
	src := NewSource("")
	rcv := src.Subscribe()
	defer rcv.Close()

	got := make(chan string, 1)
	go func() {
		v, err := rcv.Next(context.Background())
		if err != nil {
			return
		}
		got <- v
	}()

	time.Sleep(10 * time.Millisecond)
	src.Send("frame")

	select {
	case v := <-got:
		if v != "frame" {
			t.Errorf("expected %q, got %q", "frame", v)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by Send")
	}
}

func TestCloseFailsWaiters(t *testing.T) {
	src := NewSource(0)
	rcv := src.Subscribe()
	defer rcv.Close()

	errs := make(chan error, 1)
	go func() {
		_, err := rcv.Next(context.Background())
		errs <- err
	}()

	time.Sleep(10 * time.Millisecond)
	src.Close()

	select {
	case err := <-errs:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by Close")
	}

	// A fresh wait must fail immediately too.
	if _, err := rcv.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}
}

func TestMarkChangedRedelivers(t *testing.T) {
	src := NewSource(7)
	rcv := src.Subscribe()
	defer rcv.Close()

	rcv.MarkChanged()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := rcv.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if v != 7 {
		t.Errorf("expected initial value 7, got %d", v)
	}
}

func TestReceiverCount(t *testing.T) {
	src := NewSource(0)
	if n := src.Receivers(); n != 0 {
		t.Fatalf("expected 0 receivers, got %d", n)
	}
	a := src.Subscribe()
	b := src.Subscribe()
	if n := src.Receivers(); n != 2 {
		t.Fatalf("expected 2 receivers, got %d", n)
	}
	a.Close()
	a.Close() // double close is a no-op
	b.Close()
	if n := src.Receivers(); n != 0 {
		t.Fatalf("expected 0 receivers after close, got %d", n)
	}
}

func TestConcurrentSendAndSubscribe(t *testing.T) {
	src := NewSource(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rcv := src.Subscribe()
			defer rcv.Close()
			src.Send(n)
			rcv.Latest()
		}(i)
	}
	wg.Wait()
}

func TestOwnedSourceExclusive(t *testing.T) {
	src := NewSource("default")
	owned := NewOwnedSource(src)

	h, ok := owned.TryAcquire()
	if !ok {
		t.Fatal("first acquire failed")
	}
	if _, ok := owned.TryAcquire(); ok {
		t.Fatal("second acquire succeeded while held")
	}

	h.Send("training")
	if v := src.Value(); v != "training" {
		t.Errorf("expected %q, got %q", "training", v)
	}

	h.Release()
	if v := src.Value(); v != "" {
		t.Errorf("expected reset to default, got %q", v)
	}

	// Handle can be re-acquired after release; double release is a no-op.
	h.Release()
	if _, ok := owned.TryAcquire(); !ok {
		t.Fatal("acquire after release failed")
	}
}
