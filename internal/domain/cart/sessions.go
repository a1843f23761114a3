package cart

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// session is one live engine and the number of callers holding it.
type session struct {
	engine *Engine
	refs   int
	cached bool // present in the idle LRU
}

// Sessions keeps one Engine per browser session. Engines are hydrated on
// first use and evicted least-recently-used once no request holds them; an
// evicted session is rehydrated from storage on its next request. At most
// one engine exists per session at any time.
type Sessions struct {
	storage Storage
	group   singleflight.Group
	logger  *zap.Logger
	opts    []Option

	mu     sync.Mutex
	live   map[string]*session
	recent *lru.Cache
	drops  uint64 // live engines dropped so far
}

// hydrated is an engine loaded from storage and the drop count read before
// loading it.
type hydrated struct {
	engine *Engine
	drops  uint64
}

// NewSessions builds a registry keeping at most size idle engines. opts are
// applied to every engine it creates.
func NewSessions(storage Storage, size int, logger *zap.Logger, opts ...Option) (*Sessions, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sessions{
		storage: storage,
		logger:  logger,
		opts:    append([]Option{WithLogger(logger)}, opts...),
		live:    make(map[string]*session),
	}
	recent, err := lru.NewWithEvict(size, s.evicted)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	s.recent = recent
	return s, nil
}

// Acquire returns the cart engine for sessionID, hydrating it if needed.
// The caller must call release when done with the engine; until then the
// engine stays the only one for the session. Concurrent first requests for
// the same session share one hydration.
func (s *Sessions) Acquire(ctx context.Context, sessionID string) (engine *Engine, release func(), err error) {
	if sessionID == "" {
		return nil, nil, ErrSessionRequired
	}
	for {
		if e, ok := s.hold(sessionID, hydrated{}); ok {
			return e, s.releaser(sessionID, e), nil
		}

		v, err, _ := s.group.Do(sessionID, func() (interface{}, error) {
			drops := s.dropCount()
			opts := append([]Option{}, s.opts...)
			opts = append(opts, WithLogger(s.logger.With(zap.String("session_id", sessionID))))
			return hydrated{engine: NewEngine(ctx, ScopedStorage(s.storage, sessionID), opts...), drops: drops}, nil
		})
		if err != nil {
			return nil, nil, err
		}

		// Another caller may have installed an engine while this one
		// hydrated; theirs wins and the fresh one is dropped unused.
		if e, ok := s.hold(sessionID, v.(hydrated)); ok {
			return e, s.releaser(sessionID, e), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}
}

func (s *Sessions) dropCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drops
}

// hold takes a reference on the live engine for sessionID. When none is
// live, fresh is installed unless an engine was dropped after fresh was
// read, since that engine may have written newer state.
func (s *Sessions) hold(sessionID string, fresh hydrated) (*Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live[sessionID]
	if !ok {
		if fresh.engine == nil || fresh.drops != s.drops {
			return nil, false
		}
		sess = &session{engine: fresh.engine}
		s.live[sessionID] = sess
	}
	sess.refs++
	if sess.cached {
		s.recent.Get(sessionID)
	} else {
		sess.cached = true
		s.recent.Add(sessionID, sess)
	}
	return sess.engine, true
}

func (s *Sessions) releaser(sessionID string, e *Engine) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			sess, ok := s.live[sessionID]
			if !ok || sess.engine != e {
				return
			}
			sess.refs--
			if sess.refs == 0 && !sess.cached {
				s.drop(sessionID)
			}
		})
	}
}

// evicted runs inside recent's Add and Remove, which are only called with
// s.mu held.
func (s *Sessions) evicted(key, value interface{}) {
	sess := value.(*session)
	sess.cached = false
	if sess.refs == 0 {
		s.drop(key.(string))
	}
}

func (s *Sessions) drop(sessionID string) {
	delete(s.live, sessionID)
	s.drops++
}

// Forget drops the in-memory engine for sessionID once no request holds
// it. Stored data is kept.
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent.Remove(sessionID)
}

// Len reports the number of live engines.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}
