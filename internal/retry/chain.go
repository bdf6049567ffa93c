package retry

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/frames"
	"errors"
	"time"
)

type State int

const (
	StatePending State = iota
	StateInProgress
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in_progress"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

var (
	ErrChainSucceeded   = errors.New("retry chain already succeeded")
	ErrChainExhausted   = errors.New("retry chain is exhausted")
	ErrAttemptMissing   = errors.New("current strategy has no recorded attempt")
	ErrAttemptRecorded  = errors.New("current strategy already has a recorded attempt")
	ErrStrategyMismatch = errors.New("attempt strategy does not match the current strategy")
	ErrNotExhausted     = errors.New("retry chain is not exhausted")
)

// Chain is the per-call strategy sequence. It is not safe for concurrent
// use; one interaction owns it from construction to result.
type Chain struct {
	strategies      []entity.Strategy
	skipped         []entity.FrameContext
	current         int
	recorded        bool
	attempts        []entity.InteractionAttempt
	timeoutPerFrame time.Duration
}

// NewChain builds [MainFrame] + prioritized accessible iframes +
// [CoordinateClick] from one frame snapshot. frames[0] must be the main
// frame. Inaccessible frames are kept aside in Skipped.
func NewChain(snapshot []entity.FrameContext, timeoutPerFrame time.Duration) *Chain {
	c := &Chain{timeoutPerFrame: timeoutPerFrame}

	for _, fc := range frames.Prioritize(snapshot, true) {
		switch {
		case fc.IsMain():
			c.strategies = append(c.strategies, entity.MainFrameStrategy(fc))
		case !fc.Accessible:
			c.skipped = append(c.skipped, fc)
		default:
			c.strategies = append(c.strategies, entity.IframeStrategy(fc))
		}
	}

	c.strategies = append(c.strategies, entity.CoordinateClickStrategy())

	return c
}

func (c *Chain) Strategies() []entity.Strategy {
	return append([]entity.Strategy(nil), c.strategies...)
}

// Skipped lists inaccessible frames left out of the chain.
func (c *Chain) Skipped() []entity.FrameContext {
	return append([]entity.FrameContext(nil), c.skipped...)
}

func (c *Chain) Attempts() []entity.InteractionAttempt {
	return append([]entity.InteractionAttempt(nil), c.attempts...)
}

func (c *Chain) TimeoutPerFrame() time.Duration {
	return c.timeoutPerFrame
}

func (c *Chain) MaxAttempts() int {
	return len(c.strategies)
}

func (c *Chain) CurrentIndex() int {
	return c.current
}

// Current returns the strategy to attempt next; false once the chain is
// exhausted.
func (c *Chain) Current() (entity.Strategy, bool) {
	if c.Exhausted() {
		return entity.Strategy{}, false
	}

	return c.strategies[c.current], true
}

func (c *Chain) Exhausted() bool {
	return c.current >= len(c.strategies)
}

func (c *Chain) Succeeded() bool {
	for _, a := range c.attempts {
		if a.Success {
			return true
		}
	}

	return false
}

func (c *Chain) State() State {
	switch {
	case c.Succeeded():
		return StateSucceeded
	case c.Exhausted():
		return StateExhausted
	case c.current == 0 && !c.recorded:
		return StatePending
	default:
		return StateInProgress
	}
}

// AddAttempt records the outcome of the current strategy. A successful
// attempt makes the chain terminal.
func (c *Chain) AddAttempt(a entity.InteractionAttempt) error {
	switch {
	case c.Succeeded():
		return ErrChainSucceeded
	case c.Exhausted():
		return ErrChainExhausted
	case c.recorded:
		return ErrAttemptRecorded
	case a.Strategy.ID() != c.strategies[c.current].ID():
		return ErrStrategyMismatch
	}

	if a.DurationMs < 0 {
		a.DurationMs = 0
	}

	c.attempts = append(c.attempts, a)
	c.recorded = true

	return nil
}

// Advance moves to the next strategy once the current one has an attempt.
func (c *Chain) Advance() error {
	if err := c.checkMovable(); err != nil {
		return err
	}

	c.current++
	c.recorded = false

	return nil
}

// JumpToFallback moves straight to the coordinate strategy. Strategies in
// between are never attempted. On the coordinate strategy itself it behaves
// like Advance.
func (c *Chain) JumpToFallback() error {
	if err := c.checkMovable(); err != nil {
		return err
	}

	last := len(c.strategies) - 1
	if c.current < last {
		c.current = last
	} else {
		c.current++
	}

	c.recorded = false

	return nil
}

func (c *Chain) checkMovable() error {
	switch {
	case c.Succeeded():
		return ErrChainSucceeded
	case c.Exhausted():
		return ErrChainExhausted
	case !c.recorded:
		return ErrAttemptMissing
	}

	return nil
}

func (c *Chain) Report() *entity.ChainReport {
	return &entity.ChainReport{
		Strategies:        c.Strategies(),
		MaxAttempts:       c.MaxAttempts(),
		Attempts:          c.Attempts(),
		TimeoutPerFrameMs: c.timeoutPerFrame.Milliseconds(),
		FinalIndex:        c.current,
		Exhausted:         c.Exhausted(),
		Succeeded:         c.Succeeded(),
	}
}

// ToErrorDict is the failure report; it is only defined for an exhausted
// chain with no successful attempt.
func (c *Chain) ToErrorDict() (*entity.ChainReport, error) {
	if c.Succeeded() {
		return nil, ErrChainSucceeded
	}

	if !c.Exhausted() {
		return nil, ErrNotExhausted
	}

	return c.Report(), nil
}
