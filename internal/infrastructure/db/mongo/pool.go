package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"

	"github.com/taskdesk/taskdesk-api/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	hookTimeout    = 30 * time.Second
	connectKey     = "connect"
)

var ErrPoolClosed = errors.New("mongo: pool closed")

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	// Timeout bounds connect, server selection and the initial ping.
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// Dial establishes a MongoDB client and verifies connectivity with a ping.
// Server selection is bounded by the configured timeout so an unreachable
// server fails fast instead of hanging.
func Dial(ctx context.Context, cfg Config) (*mongo.Client, error) {
	timeout := cfg.timeout()

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// DialFunc opens a new client. The context carries the connect deadline.
type DialFunc func(ctx context.Context) (*mongo.Client, error)

// Hook runs once after each successful connection, e.g. to create indexes.
type Hook func(ctx context.Context, db *mongo.Database) error

// Pool lazily opens one MongoDB client and shares it for the lifetime of the
// process.
//
// Concurrent callers that find no client wait on a single in-flight attempt.
// The attempt is detached from their contexts, so a caller giving up does not
// fail it for the others. A failed attempt is not remembered: the next call
// dials again. Once connected the client is reused without re-checking; the
// driver handles reconnects internally.
type Pool struct {
	cfg   Config
	dial  DialFunc
	log   zerolog.Logger
	group singleflight.Group

	mu     sync.RWMutex
	client *mongo.Client
	hooks  []Hook
	closed bool
}

// NewPool returns a Pool that dials cfg on first use.
func NewPool(cfg Config, log zerolog.Logger) *Pool {
	p := &Pool{cfg: cfg, log: log.With().Str("component", "mongo_pool").Logger()}
	p.dial = func(ctx context.Context) (*mongo.Client, error) {
		return Dial(ctx, cfg)
	}
	return p
}

// OnConnect registers a hook to run after the connection is established and
// before any caller receives it. Hook failures are logged and do not discard
// the connection.
func (p *Pool) OnConnect(h Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, h)
}

// Start warms the pool. Services keep running when it fails; the next
// request will retry.
func (p *Pool) Start(ctx context.Context) error {
	if _, err := p.Client(ctx); err != nil {
		p.log.Warn().Err(err).Msg("initial mongo connection failed, will retry on demand")
		return err
	}
	p.log.Info().Str("database", p.cfg.Database).Msg("mongo connected")
	return nil
}

// Client returns the shared client, connecting if needed.
func (p *Pool) Client(ctx context.Context) (*mongo.Client, error) {
	if c, err := p.cached(); c != nil || err != nil {
		return c, err
	}

	ch := p.group.DoChan(connectKey, p.connect)
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Client), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Database returns the configured database on the shared client.
func (p *Pool) Database(ctx context.Context) (*mongo.Database, error) {
	c, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Database(p.cfg.Database), nil
}

// Collection returns the named collection of the configured database.
func (p *Pool) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := p.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Connected reports whether a client is currently cached.
func (p *Pool) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client != nil
}

// DatabaseName is the configured database name.
func (p *Pool) DatabaseName() string { return p.cfg.Database }

// Ping checks the server is reachable, connecting first if needed.
func (p *Pool) Ping(ctx context.Context) error {
	c, err := p.Client(ctx)
	if err != nil {
		return err
	}
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the client. Later calls fail with ErrPoolClosed.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	c := p.client
	p.client = nil
	p.closed = true
	p.mu.Unlock()

	if c == nil {
		return nil
	}
	if err := c.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	p.log.Info().Msg("mongo disconnected")
	return nil
}

func (p *Pool) cached() (*mongo.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	return p.client, nil
}

// connect runs inside the singleflight group; at most one executes at a time.
func (p *Pool) connect() (interface{}, error) {
	// A previous attempt may have finished between cached() and DoChan.
	if c, err := p.cached(); c != nil || err != nil {
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.timeout())
	defer cancel()

	start := time.Now()
	client, err := p.dial(ctx)
	metrics.DBConnectDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBConnectAttemptsTotal.WithLabelValues("failure").Inc()
		p.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("mongo connection attempt failed")
		return nil, err
	}
	metrics.DBConnectAttemptsTotal.WithLabelValues("success").Inc()

	// Hooks run before the client is published so no caller sees the
	// database ahead of its indexes.
	p.mu.RLock()
	hooks := append([]Hook(nil), p.hooks...)
	p.mu.RUnlock()
	p.runHooks(client, hooks)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = client.Disconnect(context.Background())
		return nil, ErrPoolClosed
	}
	p.client = client
	p.mu.Unlock()
	return client, nil
}

func (p *Pool) runHooks(client *mongo.Client, hooks []Hook) {
	if len(hooks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	db := client.Database(p.cfg.Database)
	for i, h := range hooks {
		if err := h(ctx, db); err != nil {
			p.log.Warn().Err(err).Int("hook", i).Msg("mongo on-connect hook failed")
		}
	}
}
