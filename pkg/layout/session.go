package layout

import (
	"context"
	"errors"
	"sync"

	"github.com/signalgraph/signalgraph/pkg/common"
	"github.com/signalgraph/signalgraph/pkg/logger"
)

// Stepper advances node positions under a layout until ctx is cancelled.
// It calls onTick after every step. Run must return promptly once ctx is
// done and must not touch the nodes after returning.
type Stepper interface {
	Run(ctx context.Context, graph *Resolved, layout *Layout, onTick func()) error
}

// Session owns the running simulation for one graph. Each Switch stops the
// previous tick loop and waits for it to exit before the new layout is
// applied, so ticks of an old strategy never reach the nodes afterwards.
type Session struct {
	mu       sync.Mutex
	graph    *common.Graph
	resolved *Resolved
	viewport Viewport
	stepper  Stepper
	onTick   func()

	current *Layout
	cancel  context.CancelFunc
	done    chan struct{}

	errMu  sync.Mutex
	runErr error
}

// NewSession prepares a session for g. No loop runs until the first Switch.
func NewSession(g *common.Graph, vp Viewport, stepper Stepper, onTick func()) (*Session, error) {
	if stepper == nil {
		return nil, errors.New("layout: nil stepper")
	}
	if err := vp.validate(); err != nil {
		return nil, err
	}
	resolved, err := Resolve(g)
	if err != nil {
		return nil, err
	}
	if onTick == nil {
		onTick = func() {}
	}
	return &Session{
		graph:    g,
		resolved: resolved,
		viewport: vp,
		stepper:  stepper,
		onTick:   onTick,
	}, nil
}

// Switch replaces the running strategy. An invalid strategy leaves the
// current loop and every node untouched.
func (s *Session) Switch(strategy Strategy) (*Layout, error) {
	if !strategy.Valid() {
		return nil, &InvalidStrategyError{Strategy: string(strategy)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restart(strategy, s.viewport)
}

// Resize re-applies the current strategy for a new viewport. Before the
// first Switch it only records the viewport.
func (s *Session) Resize(vp Viewport) (*Layout, error) {
	if err := vp.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.viewport = vp
		return nil, nil
	}
	return s.restart(s.current.Strategy, vp)
}

func (s *Session) restart(strategy Strategy, vp Viewport) (*Layout, error) {
	if err := vp.validate(); err != nil {
		return nil, err
	}
	s.stopLocked()

	l, err := Apply(s.graph, vp, strategy)
	if err != nil {
		return nil, err
	}
	s.viewport = vp
	s.current = l

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		err := s.stepper.Run(ctx, s.resolved, l, s.onTick)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Layout stepper stopped", "strategy", strategy, "err", err)
			s.errMu.Lock()
			s.runErr = err
			s.errMu.Unlock()
		}
	}()

	logger.Debug("Layout applied", "strategy", strategy, "pins", len(l.Pins), "nodes", len(s.graph.Nodes))
	return l, nil
}

func (s *Session) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// Current returns the layout in effect, or nil before the first Switch.
func (s *Session) Current() *Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Err returns the error of the last stepper run that failed on its own.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.runErr
}

// Stop ends the running loop, if any, and waits for it to return.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}
