// Package optimize implements a bounded one-dimensional scalar minimizer:
// Brent's method restricted to an interval, the same algorithm behind
// SciPy's minimize_scalar(method="bounded") (itself a translation of
// Forsythe, Malcolm & Moler's fmin_bounded / Numerical Recipes' golden-
// section-plus-parabolic-interpolation method).
//
// No third-party library reachable from the pack exposes this exact
// primitive: gonum's optimize package targets multivariate/gradient-based
// problems and has no bounded 1-D Brent entry point, so this is a direct,
// from-scratch port rather than a wrapper. See DESIGN.md.
package optimize

import "math"

// Bracket names the three-point seed the profit curve is expected to peak
// near, carried forward from the composed AMM profit curve's typical shape.
// Bounded does not take a Bracket: it always searches the full [lo, hi] it
// is given, starting from the golden-section point of that interval, so a
// Bracket (including DefaultBracket) has no effect on its result.
type Bracket struct {
	Lo, Mid, Hi float64
}

// DefaultBracket seeds the search at 45%/50%/55% of the upper bound, tuned
// for AMM profit curves that peak somewhere in the middle of the domain.
func DefaultBracket(upper float64) Bracket {
	return Bracket{Lo: 0.45 * upper, Mid: 0.50 * upper, Hi: 0.55 * upper}
}

// Result is the outcome of a bounded minimization.
type Result struct {
	X         float64
	Fun       float64
	Iterations int
}

const (
	goldenMean = 0.5 * (3.0 - 2.236067977499790) // 0.5*(3-sqrt(5))
	sqrtEps    = 1.4901161193847656e-08          // sqrt(2.220446049250313e-16)
)

// Bounded minimizes f over [lo, hi] to within absolute tolerance xatol on
// the returned x, using Brent's method (golden-section steps interleaved
// with parabolic interpolation once the bracket has tightened). maxIter
// bounds the number of function evaluations; 500 matches SciPy's default.
func Bounded(f func(float64) float64, lo, hi, xatol float64, maxIter int) Result {
	if maxIter <= 0 {
		maxIter = 500
	}
	if xatol <= 0 {
		xatol = 1e-5
	}

	a, b := lo, hi
	fulc := a + goldenMean*(b-a)
	nfc, xf := fulc, fulc
	rat, e := 0.0, 0.0

	x := xf
	fx := f(x)
	num := 1

	ffulc, fnfc := fx, fx
	xm := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(xf) + xatol/3.0
	tol2 := 2.0 * tol1

	for math.Abs(xf-xm) > (tol2 - 0.5*(b-a)) {
		golden := true

		if math.Abs(e) > tol1 {
			golden = false
			r := (xf - nfc) * (fx - ffulc)
			q := (xf - fulc) * (fx - fnfc)
			p := (xf-fulc)*q - (xf-nfc)*r
			q = 2.0 * (q - r)
			if q > 0.0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = rat

			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-xf) && p < q*(b-xf) {
				rat = p / q
				x = xf + rat
				if (x-a) < tol2 || (b-x) < tol2 {
					rat = tol1 * sign(xm-xf)
				}
			} else {
				golden = true
			}
		}

		if golden {
			if xf >= xm {
				e = a - xf
			} else {
				e = b - xf
			}
			rat = goldenMean * e
		}

		step := rat
		if rat == 0 {
			step = tol1 * sign(rat)
		} else {
			step = sign(rat) * math.Max(math.Abs(rat), tol1)
		}
		x = xf + step

		fu := f(x)
		num++

		if fu <= fx {
			if x >= xf {
				a = xf
			} else {
				b = xf
			}
			fulc, ffulc = nfc, fnfc
			nfc, fnfc = xf, fx
			xf, fx = x, fu
		} else {
			if x < xf {
				a = x
			} else {
				b = x
			}
			if fu <= fnfc || nfc == xf {
				fulc, ffulc = nfc, fnfc
				nfc, fnfc = x, fu
			} else if fu <= ffulc || fulc == xf || fulc == nfc {
				fulc, ffulc = x, fu
			}
		}

		xm = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(xf) + xatol/3.0
		tol2 = 2.0 * tol1

		if num >= maxIter {
			break
		}
	}

	return Result{X: xf, Fun: fx, Iterations: num}
}

func sign(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 1 // scipy's np.sign(0) + (x==0) == 1
}
