package mongo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// newTestPool returns a pool whose dialer is replaced by dial. The clients it
// hands out are never connected, so tests must not Close a pool holding one.
func newTestPool(dial DialFunc) *Pool {
	p := NewPool(Config{Database: "taskdesk_test", Timeout: time.Second}, zerolog.Nop())
	p.dial = dial
	return p
}

func TestPool_ConcurrentCallersShareOneAttempt(t *testing.T) {
	var dials atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	handle := &mongo.Client{}

	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		if dials.Add(1) == 1 {
			close(entered)
		}
		<-release
		return handle, nil
	})

	const callers = 16
	results := make([]*mongo.Client, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.Client(context.Background())
		}(i)
	}

	<-entered
	// Give the remaining callers a chance to queue on the in-flight attempt.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := dials.Load(); got != 1 {
		t.Fatalf("expected exactly 1 dial, got %d", got)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error %v", i, errs[i])
		}
		if results[i] != handle {
			t.Fatalf("caller %d received a different handle", i)
		}
	}
	if !p.Connected() {
		t.Fatalf("pool should report connected")
	}
}

func TestPool_FailedAttemptDoesNotPoison(t *testing.T) {
	var dials atomic.Int32
	handle := &mongo.Client{}
	unreachable := errors.New("server selection timeout")

	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		if dials.Add(1) == 1 {
			return nil, unreachable
		}
		return handle, nil
	})

	if _, err := p.Client(context.Background()); !errors.Is(err, unreachable) {
		t.Fatalf("first call: expected dial error, got %v", err)
	}
	if p.Connected() {
		t.Fatalf("failed attempt must not be cached")
	}

	got, err := p.Client(context.Background())
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got != handle {
		t.Fatalf("second call returned unexpected handle")
	}
	if dials.Load() != 2 {
		t.Fatalf("expected 2 dials, got %d", dials.Load())
	}
}

func TestPool_ReusesCachedClient(t *testing.T) {
	var dials atomic.Int32
	handle := &mongo.Client{}
	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		dials.Add(1)
		return handle, nil
	})

	for i := 0; i < 5; i++ {
		if _, err := p.Client(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if dials.Load() != 1 {
		t.Fatalf("expected 1 dial, got %d", dials.Load())
	}
}

func TestPool_CallerCancellationDoesNotAbortAttempt(t *testing.T) {
	var dials atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	handle := &mongo.Client{}

	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		dials.Add(1)
		close(entered)
		<-release
		return handle, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Client(ctx)
		done <- err
	}()

	<-entered
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	got, err := p.Client(context.Background())
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	if got != handle {
		t.Fatalf("expected the handle from the detached attempt")
	}
	if dials.Load() != 1 {
		t.Fatalf("expected the abandoned attempt to be reused, got %d dials", dials.Load())
	}
}

func TestPool_DialUsesBoundedContext(t *testing.T) {
	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("dial context must carry a deadline")
		}
		return nil, errors.New("refused")
	})
	_, _ = p.Client(context.Background())
}

func TestPool_ClosedPoolRejectsCalls(t *testing.T) {
	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		t.Fatalf("closed pool must not dial")
		return nil, nil
	})

	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := p.Client(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if _, err := p.Collection(context.Background(), "users"); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed from Collection, got %v", err)
	}
}

func TestPool_CallersWaitForHooks(t *testing.T) {
	handle := &mongo.Client{}
	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		return handle, nil
	})

	hookStarted := make(chan struct{})
	releaseHook := make(chan struct{})
	var hookDone atomic.Bool
	p.OnConnect(func(ctx context.Context, db *mongo.Database) error {
		close(hookStarted)
		<-releaseHook
		hookDone.Store(true)
		return nil
	})

	first := make(chan error, 1)
	go func() {
		_, err := p.Client(context.Background())
		first <- err
	}()
	<-hookStarted

	if p.Connected() {
		t.Fatalf("client must not be published while hooks are running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if c, err := p.Client(ctx); c != nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second caller should wait for hooks, got client=%v err=%v", c != nil, err)
	}

	close(releaseHook)
	if err := <-first; err != nil {
		t.Fatalf("first caller: %v", err)
	}

	got, err := p.Client(context.Background())
	if err != nil || got != handle {
		t.Fatalf("Client after hooks = %v, %v", got, err)
	}
	if !hookDone.Load() {
		t.Fatalf("hook should have completed before the client was handed out")
	}
}

func TestPool_FailedHookKeepsConnection(t *testing.T) {
	handle := &mongo.Client{}
	p := newTestPool(func(ctx context.Context) (*mongo.Client, error) {
		return handle, nil
	})
	p.OnConnect(func(ctx context.Context, db *mongo.Database) error {
		return errors.New("index build failed")
	})

	got, err := p.Client(context.Background())
	if err != nil || got != handle {
		t.Fatalf("Client = %v, %v", got, err)
	}
}

func TestConfig_DefaultTimeout(t *testing.T) {
	if got := (Config{}).timeout(); got != defaultTimeout {
		t.Fatalf("timeout = %v, want %v", got, defaultTimeout)
	}
}
