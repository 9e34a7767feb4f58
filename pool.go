package qail

import (
	"context"
	"time"

	"github.com/jackc/puddle/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// PoolConfig configures a Pool (§4.5).
type PoolConfig struct {
	Host     string
	Port     string
	User     string
	Database string
	Password string
	TLSMode  string

	MaxConnections     int
	MinConnections     int
	IdleTimeout        time.Duration
	AcquireTimeout     time.Duration
	ReconnectInterval  time.Duration
}

// pooledConn pairs a live Conn with the instant it was last returned to the
// pool, so acquire() can apply the idle_timeout_ms eviction rule (§4.5).
type pooledConn struct {
	conn     *Conn
	lastUsed time.Time
}

// Pool is a bounded, thread-shared connection pool (§4.5, §5). Acquisition
// fairness matches arrival order of the underlying semaphore's FIFO wake
// queue; beyond that the pool makes no fairness guarantee.
type Pool struct {
	cfg  PoolConfig
	res  *puddle.Pool[*pooledConn]
	sem  *semaphore.Weighted

	stop   context.CancelFunc
	group  *errgroup.Group
}

// NewPool builds a Pool and starts its background maintenance loop. The
// resource lifecycle (construct/destroy, LIFO idle reuse, bounded size) is
// delegated to jackc/puddle/v2 — the same pooling primitive pgx's own
// connection pool is built on — with the spec's idle-timeout and
// minimum-connection policy layered on top in acquire/maintain.
func NewPool(cfg PoolConfig) (*Pool, *Error) {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 10
	}
	p := &Pool{cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.MaxConnections))}

	res, err := puddle.NewPool(&puddle.Config[*pooledConn]{
		Constructor: func(ctx context.Context) (*pooledConn, error) {
			conn, cerr := Connect(ctx, ConnConfig{
				Host: cfg.Host, Port: cfg.Port, User: cfg.User,
				Database: cfg.Database, Password: cfg.Password, TLSMode: cfg.TLSMode,
			})
			if cerr != nil {
				return nil, cerr
			}
			return &pooledConn{conn: conn, lastUsed: time.Now()}, nil
		},
		Destructor: func(pc *pooledConn) { pc.conn.Close() },
		MaxSize:    int32(cfg.MaxConnections),
	})
	if err != nil {
		return nil, newErr("qail.NewPool", KindPoolClosed, "failed to construct resource pool", err)
	}
	p.res = res

	ctx, cancel := context.WithCancel(context.Background())
	p.stop = cancel
	group, gctx := errgroup.WithContext(ctx)
	p.group = group
	if cfg.ReconnectInterval > 0 {
		group.Go(func() error { return p.maintain(gctx) })
	}

	return p, nil
}

// maintain runs every ReconnectInterval, topping up idle+active toward
// MinConnections. It never holds any lock while performing network I/O —
// CreateResource dials outside the pool's internal mutex, matching §5's
// "must not hold the mutex while performing network I/O" rule.
func (p *Pool) maintain(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.ReconnectInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stat := p.res.Stat()
			have := int(stat.TotalResources())
			need := p.cfg.MinConnections - have
			for i := 0; i < need; i++ {
				if err := p.res.CreateResource(ctx); err != nil {
					break
				}
			}
		}
	}
}

// PooledConn is an acquired connection, returned to the pool on Release or
// permanently discarded on Discard.
type PooledConn struct {
	res *puddle.Resource[*pooledConn]
	pool *Pool
}

// Conn returns the underlying connection.
func (pc *PooledConn) Conn() *Conn { return pc.res.Value().conn }

// Release returns the connection to the pool's idle list, updating its
// last-used timestamp (§4.5's release()).
func (pc *PooledConn) Release() {
	pc.res.Value().lastUsed = time.Now()
	pc.res.Release()
	pc.pool.sem.Release(1)
}

// Discard closes the connection without re-pooling it (§4.5's discard()) —
// for use after a connection is left in an unrecoverable state (e.g. a
// protocol desync).
func (pc *PooledConn) Discard() {
	pc.res.Destroy()
	pc.pool.sem.Release(1)
}

// Acquire waits for a slot (up to cfg.AcquireTimeout), evicting any idle
// connection older than cfg.IdleTimeout before handing it back, and
// creating a fresh connection when none is idle and the pool has not hit
// MaxConnections (§4.5's acquire()).
func (p *Pool) Acquire(ctx context.Context) (*PooledConn, *Error) {
	acqCtx := ctx
	var cancel context.CancelFunc
	if p.cfg.AcquireTimeout > 0 {
		acqCtx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(acqCtx, 1); err != nil {
		return nil, newErr("qail.Pool.Acquire", KindPoolExhausted, "timed out waiting for a free connection slot", err)
	}

	for {
		res, err := p.res.Acquire(acqCtx)
		if err != nil {
			p.sem.Release(1)
			return nil, newErr("qail.Pool.Acquire", KindPoolExhausted, "failed to acquire a pooled connection", err)
		}
		if p.cfg.IdleTimeout > 0 && time.Since(res.Value().lastUsed) > p.cfg.IdleTimeout {
			res.Destroy()
			continue
		}
		return &PooledConn{res: res, pool: p}, nil
	}
}

// Close stops the maintenance loop and closes every idle connection
// (§4.5's shutdown: "sets an atomic stop flag and joins the thread; then
// closes every idle slot").
func (p *Pool) Close() {
	p.stop()
	p.group.Wait()
	p.res.Close()
}

// Stat exposes the pool's live counters for observability.
type Stat struct {
	Idle, Active, Total int
}

// Stat reports the current idle/active/total connection counts.
func (p *Pool) Stat() Stat {
	s := p.res.Stat()
	return Stat{
		Idle:   int(s.IdleResources()),
		Active: int(s.AcquiredResources()),
		Total:  int(s.TotalResources()),
	}
}
