package units

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// CoolingCurve is a tabulated radiative cooling function Lambda(T),
// stored log-log and interpolated linearly between samples.
type CoolingCurve struct {
	LogT      []float64 `yaml:"log_t"`      // log10 temperature [K]
	LogLambda []float64 `yaml:"log_lambda"` // log10 Lambda [erg cm^3 s^-1]
}

// DefaultCooling returns a coarse collisional-ionization-equilibrium ISM
// cooling curve. Production runs should load the tabulated curve the
// simulation itself used.
func DefaultCooling() *CoolingCurve {
	return &CoolingCurve{
		LogT:      []float64{4.0, 4.25, 4.5, 5.0, 5.5, 6.0, 6.5, 7.0, 7.5, 8.0},
		LogLambda: []float64{-23.0, -21.9, -21.5, -21.2, -21.4, -21.8, -22.4, -22.6, -22.5, -22.3},
	}
}

// LoadCooling reads a YAML cooling-curve table.
func LoadCooling(path string) (*CoolingCurve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cooling curve: %w", err)
	}
	var c CoolingCurve
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing cooling curve %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("cooling curve %s: %w", path, err)
	}
	return &c, nil
}

func (c *CoolingCurve) validate() error {
	if len(c.LogT) < 2 {
		return fmt.Errorf("need at least 2 samples, have %d", len(c.LogT))
	}
	if len(c.LogT) != len(c.LogLambda) {
		return fmt.Errorf("log_t has %d samples, log_lambda has %d", len(c.LogT), len(c.LogLambda))
	}
	for i := 1; i < len(c.LogT); i++ {
		if c.LogT[i] <= c.LogT[i-1] {
			return fmt.Errorf("log_t not strictly increasing at index %d", i)
		}
	}
	return nil
}

// Lambda evaluates the cooling function at temperature tempK (in Kelvin).
// Temperatures outside the table are clamped to its endpoints.
// NaN or non-positive temperatures yield NaN.
func (c *CoolingCurve) Lambda(tempK float64) float64 {
	if math.IsNaN(tempK) || tempK <= 0 {
		return math.NaN()
	}
	logT := math.Log10(tempK)
	n := len(c.LogT)
	if logT <= c.LogT[0] {
		return math.Pow(10, c.LogLambda[0])
	}
	if logT >= c.LogT[n-1] {
		return math.Pow(10, c.LogLambda[n-1])
	}

	// Binary search for the bracketing interval.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if c.LogT[mid] <= logT {
			lo = mid
		} else {
			hi = mid
		}
	}
	frac := (logT - c.LogT[lo]) / (c.LogT[hi] - c.LogT[lo])
	logLambda := c.LogLambda[lo] + frac*(c.LogLambda[hi]-c.LogLambda[lo])
	return math.Pow(10, logLambda)
}
