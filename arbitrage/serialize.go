package arbitrage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/arbcycle/solver/v2pool"
	"github.com/arbcycle/solver/v3pool"
)

// FrozenCycle is a serializable snapshot of a Cycle's pool states, with no
// subscribers and no mutex -- the Go analogue of the Python original's
// __getstate__/__setstate__ pair, which drops _subscribers and _lock before
// pickling a LPCycle and rebuilds them on unpickle.
//
// Thaw-ing a FrozenCycle against the same CycleSpec and calling Calculate
// with its States as overrides must reproduce the exact CalculationResult
// the cycle would have produced at the moment it was frozen -- the pickle
// round-trip property.
type FrozenCycle struct {
	ID     string
	States map[common.Address]any
}

// Freeze captures the cycle's currently cached pool snapshots (ignoring any
// live subscription state) into a FrozenCycle safe to store or transmit.
func (c *Cycle) Freeze() FrozenCycle {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make(map[common.Address]any, len(c.poolStates))
	for addr, st := range c.poolStates {
		states[addr] = cloneSnapshot(st)
	}
	return FrozenCycle{ID: c.spec.ID, States: states}
}

// Thaw rebuilds the Override map a frozen cycle's snapshots represent, to be
// passed straight into Calculate -- re-subscribing to live pools is
// deliberately not part of this path, matching the original's stance that a
// thawed cycle is a frozen, self-contained evaluation rather than a new
// live observer.
func (f FrozenCycle) Thaw() (Override, error) {
	if f.States == nil {
		return nil, fmt.Errorf("%w: frozen cycle has no captured pool states", ErrConfigError)
	}
	overrides := make(Override, len(f.States))
	for addr, st := range f.States {
		overrides[addr] = cloneSnapshot(st)
	}
	return overrides, nil
}

// cloneSnapshot deep-copies a pool-kind-specific snapshot so a FrozenCycle
// never aliases the live Cycle's cached state.
func cloneSnapshot(st any) any {
	switch s := st.(type) {
	case v2pool.State:
		return s.Clone()
	case v3pool.State:
		return s.Clone()
	default:
		return nil
	}
}
