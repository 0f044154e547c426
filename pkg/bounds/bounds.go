/*
The bounds package implements the closed-form sample-complexity formulas used
by the influence maximization algorithms. All functions are stateless and
fail fast on invalid inputs, since the downstream approximation guarantees
depend on the exact constants.

# REFERENCES

[1] C. Borgs, M. Brautbar, J. Chayes, B. Lucier; "Maximizing social influence
in nearly optimal time"; SODA 2014.

[2] Y. Tang, X. Xiao, Y. Shi; "Influence maximization: near-optimal time
complexity meets practical efficiency"; SIGMOD 2014.

[3] Y. Tang, Y. Shi, X. Xiao; "Influence maximization in near-linear time:
a martingale approach"; SIGMOD 2015.
*/
package bounds

import (
	"errors"
	"math"

	"github.com/seedlab-io/influmax/pkg/models"
)

// one minus 1/e, the submodular greedy approximation factor.
const oneMinusInvE = 1.0 - 1.0/math.E

// DefaultRounds returns the baseline number of RR sets for the fixed-sample
// algorithm: 48(m+n)ln(n)/eps^3, following Theorem 1 in [1].
func DefaultRounds(n, m int, eps float64) (float64, error) {
	if err := checkSize(n); err != nil {
		return 0, err
	}
	if m < 0 {
		return 0, ErrInvalidEdgeCount
	}
	if err := checkEps(eps); err != nil {
		return 0, err
	}

	rounds := 48.0 / (eps * eps * eps) * float64(m+n) * math.Log(float64(n))
	return checkFinite(rounds)
}

// EpsPrime returns the adjusted epsilon used in the first phase of TimPlus:
// eps' = 5 * cbrt(ell*eps^2 / (k+ell)). Last equation of Section 4.1 in [2].
func EpsPrime(eps float64, k int, ell float64) (float64, error) {
	if err := checkEps(eps); err != nil {
		return 0, err
	}
	if k < 0 {
		return 0, models.ErrInvalidSeedSize
	}
	if err := checkEll(ell); err != nil {
		return 0, err
	}

	return 5.0 * math.Cbrt(ell*eps*eps/(float64(k)+ell)), nil
}

// RThreshold0 returns the number of RR sets required given a lower bound opt
// on the optimal spread, without the combinatorial term:
// (8+2eps) * n * (ell*ln(n) + ln(2)) / (eps^2 * opt).
func RThreshold0(eps, opt, ell float64, n int) (float64, error) {
	if err := checkSize(n); err != nil {
		return 0, err
	}
	if err := checkEps(eps); err != nil {
		return 0, err
	}
	if err := checkEll(ell); err != nil {
		return 0, err
	}
	if opt <= 0 {
		return 0, ErrInvalidOpt
	}

	lambda := (8.0 + 2.0*eps) * float64(n) * (ell*math.Log(float64(n)) + math.Ln2)
	return checkFinite(lambda / (eps * eps * opt))
}

// RThreshold returns the number of RR sets required given a lower bound opt
// on the optimal spread. Lemma 3 in [2]:
// (8+2eps) * n * (ell*ln(n) + ln(nCk) + ln(2)) / (eps^2 * opt).
func RThreshold(eps, opt float64, k int, ell float64, n int) (float64, error) {
	logNK, err := LogNChooseK(n, k)
	if err != nil {
		return 0, err
	}
	if err := checkEps(eps); err != nil {
		return 0, err
	}
	if err := checkEll(ell); err != nil {
		return 0, err
	}
	if opt <= 0 {
		return 0, ErrInvalidOpt
	}

	lambda := (8.0 + 2.0*eps) * float64(n) * (ell*math.Log(float64(n)) + logNK + math.Ln2)
	return checkFinite(lambda / (eps * eps * opt))
}

// StepThreshold returns the number of RR sets the first phase of TimPlus must
// reach before accepting lb as a lower bound on the optimal spread:
// (6*ell*ln(n) + 6*ln(log2(n))) * n / lb. Section 4.2 in [2].
func StepThreshold(n int, lb, ell float64) (float64, error) {
	if err := checkSize(n); err != nil {
		return 0, err
	}
	if err := checkEll(ell); err != nil {
		return 0, err
	}
	if lb <= 0 {
		return 0, ErrInvalidOpt
	}

	logN := math.Log(float64(n))
	steps := (6.0*ell*logN + 6.0*math.Log(logN/math.Ln2)) * float64(n) / lb
	return checkFinite(steps)
}

// LambdaPrime returns the Chernoff-derived sample-size lower bound used by
// the stopping test of each doubling iteration of IMM. Equation (9) in [3]:
// (2 + 2/3*eps') * (ln(nCk) + ell*ln(n) + ln(log2(n))) * n / eps'^2.
func LambdaPrime(epsPrime float64, k int, ell float64, n int) (float64, error) {
	logNK, err := LogNChooseK(n, k)
	if err != nil {
		return 0, err
	}
	if epsPrime <= 0 {
		return 0, models.ErrInvalidEpsilon
	}
	if err := checkEll(ell); err != nil {
		return 0, err
	}

	logN := math.Log(float64(n))
	lambda := (2.0 + 2.0/3.0*epsPrime) * (logNK + ell*logN + math.Log(logN/math.Ln2)) * float64(n)
	return checkFinite(lambda / (epsPrime * epsPrime))
}

// LambdaStar returns the sample size guaranteeing a (1-1/e-eps) approximation
// with probability at least 1-1/n^ell. Equation (6) in [3]:
// 2n * ((1-1/e)*alpha + beta)^2 / eps^2, with
// alpha = sqrt(ell*ln(n) + ln(2)) and
// beta = sqrt((1-1/e) * (ln(nCk) + ell*ln(n) + ln(2))).
func LambdaStar(eps float64, k int, ell float64, n int) (float64, error) {
	logNK, err := LogNChooseK(n, k)
	if err != nil {
		return 0, err
	}
	if err := checkEps(eps); err != nil {
		return 0, err
	}
	if err := checkEll(ell); err != nil {
		return 0, err
	}

	logN := math.Log(float64(n))
	alpha := math.Sqrt(ell*logN + math.Ln2)
	beta := math.Sqrt(oneMinusInvE * (logNK + ell*logN + math.Ln2))

	term := oneMinusInvE*alpha + beta
	return checkFinite(2.0 * float64(n) * term * term / (eps * eps))
}

// LogNChooseK returns ln(n choose k) computed in log-space with the log-gamma
// function, so it doesn't overflow for n up to ~10^7.
func LogNChooseK(n, k int) (float64, error) {
	if err := checkSize(n); err != nil {
		return 0, err
	}
	if k < 0 || k > n {
		return 0, models.ErrInvalidSeedSize
	}

	lgN, _ := math.Lgamma(float64(n) + 1)
	lgK, _ := math.Lgamma(float64(k) + 1)
	lgNK, _ := math.Lgamma(float64(n-k) + 1)
	return checkFinite(lgN - lgK - lgNK)
}

// checkSize returns an error if n is non-positive.
func checkSize(n int) error {
	if n <= 0 {
		return ErrInvalidNodeCount
	}
	return nil
}

// checkEps returns an error if eps is outside the open interval (0,1).
func checkEps(eps float64) error {
	if eps <= 0 || eps >= 1 {
		return models.ErrInvalidEpsilon
	}
	return nil
}

// checkEll returns an error if ell is non-positive.
func checkEll(ell float64) error {
	if ell <= 0 || math.IsNaN(ell) {
		return models.ErrInvalidEll
	}
	return nil
}

// checkFinite fails loudly on overflow instead of silently saturating.
func checkFinite(val float64) (float64, error) {
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, ErrNumericOverflow
	}
	return val, nil
}

//---------------------------------ERROR-CODES---------------------------------

var ErrInvalidNodeCount = errors.New("the number of nodes n should be greater than zero")
var ErrInvalidEdgeCount = errors.New("the number of edges m should be non-negative")
var ErrInvalidOpt = errors.New("the spread lower bound should be greater than zero")
var ErrNumericOverflow = errors.New("bound formula overflowed the float64 range")
