package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedFindsInteriorQuadraticMinimum(t *testing.T) {
	// f(x) = (x-3)^2 + 1, minimum at x=3.
	f := func(x float64) float64 { return (x-3)*(x-3) + 1 }

	result := Bounded(f, 0, 10, 1e-8, 500)
	assert.InDelta(t, 3.0, result.X, 1e-4)
	assert.InDelta(t, 1.0, result.Fun, 1e-4)
}

func TestBoundedFindsMinimumNearLowerBoundary(t *testing.T) {
	// Minimum at the left edge of the domain: monotonically increasing.
	f := func(x float64) float64 { return x }

	result := Bounded(f, 2, 20, 1e-6, 500)
	assert.InDelta(t, 2.0, result.X, 1e-3)
}

func TestBoundedFindsMinimumNearUpperBoundary(t *testing.T) {
	// Minimum at the right edge: monotonically decreasing.
	f := func(x float64) float64 { return -x }

	result := Bounded(f, 1, 50, 1e-6, 500)
	assert.InDelta(t, 50.0, result.X, 1e-3)
}

func TestBoundedRespectsMaxIterations(t *testing.T) {
	calls := 0
	f := func(x float64) float64 {
		calls++
		return math.Sin(x)
	}

	result := Bounded(f, 0, 100, 1e-12, 10)
	assert.LessOrEqual(t, result.Iterations, 10)
	assert.LessOrEqual(t, calls, 10)
}

func TestDefaultBracketScalesWithUpperBound(t *testing.T) {
	b := DefaultBracket(1000)
	assert.Equal(t, 450.0, b.Lo)
	assert.Equal(t, 500.0, b.Mid)
	assert.Equal(t, 550.0, b.Hi)
}
