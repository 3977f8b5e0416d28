// Package units defines the physical constant tables and code-unit systems
// injected into derived-field computations and radial profiling.
//
// A System is immutable once constructed: load or build one per analysis run
// and pass it by pointer. Values are CGS unless noted.
package units

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecondsPerMyr converts CGS times to megayears.
const SecondsPerMyr = 3.156e13

// System holds the physical constants and code-unit scalings for one
// simulation setup.
type System struct {
	// Physical constants.
	Mu            float64 `yaml:"mu"`            // mean molecular weight
	ProtonMass    float64 `yaml:"mp_cgs"`        // g
	Boltzmann     float64 `yaml:"kb_cgs"`        // erg/K
	Gravitational float64 `yaml:"g_cgs"`         // cm^3 g^-1 s^-2
	Gamma         float64 `yaml:"gamma"`         // adiabatic index

	// Code units.
	Length float64 `yaml:"length_cgs"` // cm per code length
	Mass   float64 `yaml:"mass_cgs"`   // g per code mass
	Time   float64 `yaml:"time_cgs"`   // s per code time

	// Output scalings.
	TempNorm  float64 `yaml:"temp_norm"`  // divides derived temperature
	VelrScale float64 `yaml:"velr_scale"` // multiplies 3D radial velocity

	Cooling *CoolingCurve `yaml:"cooling"`
}

// Default returns the jet-simulation unit system: lengths in parsecs,
// densities of 100 m_p/cm^3, velocities of 100 km/s.
func Default() *System {
	return &System{
		Mu:            0.6,
		ProtonMass:    1.67e-24,
		Boltzmann:     1.38e-16,
		Gravitational: 6.67e-8,
		Gamma:         5.0 / 3.0,
		Length:        3.086e18,          // 1 pc
		Mass:          4.907996409352e33, // (1 pc)^3 * 100 m_p/cm^3
		Time:          3.0857e11,         // 9.7 kyr, so v0 = 100 km/s
		TempNorm:      1.0,
		VelrScale:     100.0, // code velocity -> km/s
		Cooling:       DefaultCooling(),
	}
}

// Load reads a YAML unit-system file. Omitted keys keep their Default()
// values, so a file only needs to state what differs.
func Load(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unit system: %w", err)
	}
	sys := Default()
	if err := yaml.Unmarshal(data, sys); err != nil {
		return nil, fmt.Errorf("parsing unit system %s: %w", path, err)
	}
	return sys, nil
}

// Velocity returns the code velocity unit in cm/s.
func (s *System) Velocity() float64 {
	return s.Length / s.Time
}

// Density returns the code density unit in g/cm^3.
func (s *System) Density() float64 {
	return s.Mass / (s.Length * s.Length * s.Length)
}

// Pressure returns the code pressure unit in erg/cm^3.
func (s *System) Pressure() float64 {
	v := s.Velocity()
	return s.Density() * v * v
}
