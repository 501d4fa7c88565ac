package arbitrage

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/arbcycle/solver/arbitrage/optimize"
	"github.com/arbcycle/solver/logging"
	"github.com/arbcycle/solver/metrics"
	"github.com/arbcycle/solver/subscription"
	"github.com/arbcycle/solver/token"
	"github.com/arbcycle/solver/v2pool"
	"github.com/arbcycle/solver/v3pool"
)

// CycleSpec is the immutable description of a cyclic swap path: an input
// token and an ordered list of pools whose token pairs compose a closed
// loop returning to that token.
type CycleSpec struct {
	ID         string
	InputToken token.Token
	MaxInput   *uint256.Int
	Pools      []Pool
	Vectors    []SwapVector
}

// Cycle is the live, stateful wrapper around a CycleSpec: it subscribes to
// every pool in the cycle, caches their state snapshots, and exposes the
// pure Calculate operation plus the stateful calculate_arbitrage-style
// convenience wrappers from the Python original.
type Cycle struct {
	spec   CycleSpec
	logger logging.Logger
	rec    *metrics.Recorder

	mu         sync.Mutex
	poolStates Override
	best       *CalculationResult
}

// Option configures a Cycle at construction time.
type Option func(*Cycle)

// WithLogger attaches a Logger; the default is a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Cycle) { c.logger = logging.OrNop(l) }
}

// WithMetrics attaches a Prometheus-backed metrics.Recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Cycle) { c.rec = r }
}

// NewCycle constructs a Cycle, validating that the pool chain closes on
// inputToken and that consecutive pools share a token. It subscribes to
// every pool and captures an initial snapshot of each.
func NewCycle(id string, inputToken token.Token, maxInput *uint256.Int, pools []Pool, opts ...Option) (*Cycle, error) {
	vectors, err := buildVectors(inputToken, pools)
	if err != nil {
		return nil, err
	}
	if maxInput == nil || maxInput.IsZero() {
		return nil, fmt.Errorf("%w: max_input must be greater than zero", ErrConfigError)
	}

	c := &Cycle{
		spec: CycleSpec{
			ID:         id,
			InputToken: inputToken,
			MaxInput:   new(uint256.Int).Set(maxInput),
			Pools:      pools,
			Vectors:    vectors,
		},
		logger:     logging.Nop{},
		poolStates: make(Override, len(pools)),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, p := range pools {
		p.Subscribe(c)
		c.poolStates[p.Address()] = snapshotOf(p)
	}
	return c, nil
}

// Notify implements subscription.Observer: it re-caches the state of
// whichever pool published the change.
func (c *Cycle) Notify(pub subscription.Publisher) {
	p, ok := pub.(Pool)
	if !ok {
		return
	}
	c.mu.Lock()
	c.poolStates[p.Address()] = snapshotOf(p)
	c.mu.Unlock()
	c.logger.Debug("cycle observed pool state change", "cycle", c.spec.ID, "pool", p.Address())
}

func snapshotOf(p Pool) any {
	switch pool := p.(type) {
	case *v2pool.Pool:
		return pool.Snapshot()
	case *v3pool.Pool:
		return pool.Snapshot()
	default:
		return nil
	}
}

// effectiveOverrides merges the cycle's cached snapshots with the supplied
// per-call overrides, the explicit overrides taking precedence. This is
// what makes Calculate pure with respect to its inputs: it never reads a
// pool's live state directly, only this merged snapshot.
func (c *Cycle) effectiveOverrides(overrides Override) Override {
	c.mu.Lock()
	eff := make(Override, len(c.poolStates))
	for addr, st := range c.poolStates {
		eff[addr] = st
	}
	c.mu.Unlock()
	for addr, st := range overrides {
		eff[addr] = st
	}
	return eff
}

// composeOutput pushes amountIn through every pool in order, swallowing any
// per-hop error as a zero-output hop so the optimizer keeps converging
// instead of aborting (spec.md §4.6 / §9's "exception as signal").
func (c *Cycle) composeOutput(amountIn *uint256.Int, overrides Override) *uint256.Int {
	cur := amountIn
	for i, pool := range c.spec.Pools {
		out, err := quoteOut(pool, c.spec.Vectors[i].TokenIn, cur, overrides)
		if err != nil {
			return uint256.NewInt(0)
		}
		cur = out
	}
	return cur
}

// Calculate finds the input amount that maximizes out-minus-in along the
// cycle and returns the resulting swap plan. It is pure with respect to
// overrides: it never mutates any pool and always reads through
// effectiveOverrides.
func (c *Cycle) Calculate(overrides Override) (*CalculationResult, error) {
	var stop func()
	if c.rec != nil {
		stop = c.rec.StartSolve()
		defer stop()
	}

	eff := c.effectiveOverrides(overrides)

	if err := c.PreCheck(eff); err != nil {
		if c.rec != nil {
			c.rec.ObservePreCheck(err)
		}
		return nil, err
	}
	if c.rec != nil {
		c.rec.ObservePreCheck(nil)
	}

	maxInputFloat := bigToFloat(c.spec.MaxInput.ToBig())

	objective := func(x float64) float64 {
		xi := floatToUint256(x, c.spec.MaxInput)
		out := c.composeOutput(xi, eff)
		return x - bigToFloat(out.ToBig())
	}

	result := optimize.Bounded(objective, 1.0, maxInputFloat, 1.0, 500)

	bestInput := floatToUint256(result.X, c.spec.MaxInput)
	if bestInput.IsZero() {
		bestInput = uint256.NewInt(1)
	}

	actualOut := c.composeOutput(bestInput, eff)
	profit := new(big.Int).Sub(actualOut.ToBig(), bestInput.ToBig())
	if profit.Sign() <= 0 {
		c.logger.Debug("cycle converged with non-positive profit", "cycle", c.spec.ID, "input", bestInput)
		return nil, ErrNoArbitrage
	}

	swapAmounts, err := c.buildAmounts(bestInput, eff)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoArbitrage, err)
	}

	return &CalculationResult{
		ID:           c.spec.ID,
		InputToken:   c.spec.InputToken,
		InputAmount:  bestInput,
		ProfitAmount: profit,
		SwapAmounts:  swapAmounts,
	}, nil
}

// CalculateAsync runs Calculate on a separate goroutine, refusing dispatch
// if any V3 pool in the cycle uses a sparse (on-demand) tick bitmap --
// those pools depend on an RPC handle that a separate goroutine still has,
// but a separate *process* (the usual reason for calculate_with_pool in the
// Python original) would not; the check is kept here as the boundary any
// cross-process dispatcher must honor before handing this cycle off.
func (c *Cycle) CalculateAsync(ctx context.Context, overrides Override) (*CalculationResult, error) {
	for _, p := range c.spec.Pools {
		if isSparseV3(p) {
			return nil, ErrSparseBitmapNotPortable
		}
	}

	type outcome struct {
		result *CalculationResult
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := c.Calculate(overrides)
		ch <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-ch:
		return o.result, o.err
	}
}

// BatchResult is one cycle's outcome; CalculateBatch returns them in the
// same order as its input slice.
type BatchResult struct {
	Result *CalculationResult
	Err    error
}

// CalculateBatch fans Calculate out across an errgroup-supervised pool of
// goroutines, the Go-idiomatic replacement for the Python original's
// ProcessPoolExecutor/ThreadPoolExecutor dispatch. concurrency <= 0 means
// unbounded. A cycle's own error (e.g. ErrNoArbitrage) is never treated as
// a dispatch failure -- it is recorded in that cycle's BatchResult and
// every other cycle still runs to completion.
func CalculateBatch(cycles []*Cycle, overrides []Override, concurrency int) []BatchResult {
	results := make([]BatchResult, len(cycles))
	g := new(errgroup.Group)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i := range cycles {
		i := i
		var ov Override
		if overrides != nil && i < len(overrides) {
			ov = overrides[i]
		}
		g.Go(func() error {
			res, err := cycles[i].Calculate(ov)
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// CalculateAndCache runs Calculate and, on success, stores the result as
// the cycle's cached Best(), mirroring the Python original's
// calculate_arbitrage/calculate_arbitrage_return_best bookkeeping.
func (c *Cycle) CalculateAndCache(overrides Override) (*CalculationResult, error) {
	res, err := c.Calculate(overrides)
	if err == nil {
		c.mu.Lock()
		c.best = res
		c.mu.Unlock()
	}
	return res, err
}

// Best returns the last cached successful result, or nil if none.
func (c *Cycle) Best() *CalculationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.best
}

// ClearBest discards the cached result.
func (c *Cycle) ClearBest() {
	c.mu.Lock()
	c.best = nil
	c.mu.Unlock()
}

// Spec returns the cycle's immutable specification.
func (c *Cycle) Spec() CycleSpec { return c.spec }

func bigToFloat(x *big.Int) float64 {
	f := new(big.Float).SetInt(x)
	v, _ := f.Float64()
	return v
}

// floatToUint256 rounds x to the nearest integer, clamping to [0, max].
func floatToUint256(x float64, max *uint256.Int) *uint256.Int {
	if x < 0 {
		return uint256.NewInt(0)
	}
	rounded := new(big.Float).SetFloat64(math.Round(x))
	bi, _ := rounded.Int(nil)
	v, overflow := uint256.FromBig(bi)
	if overflow {
		return new(uint256.Int).Set(max)
	}
	if v.Cmp(max) > 0 {
		return new(uint256.Int).Set(max)
	}
	return v
}
