package athenak

import (
	"fmt"
	"math"
	"strings"

	"github.com/robert-malhotra/go-athenak/units"
)

// DerivedKind enumerates the derived fields the engine can compute from
// primitive fields. The set is closed: unrecognized names fail at parse
// time rather than extracting nothing.
type DerivedKind int

const (
	DerivedNone DerivedKind = iota
	DerivedTemperature
	DerivedRadialVelocity
	DerivedCoolingRate
	DerivedCoolingTime
)

func (k DerivedKind) String() string {
	switch k {
	case DerivedNone:
		return "none"
	case DerivedTemperature:
		return "temp"
	case DerivedRadialVelocity:
		return "velr"
	case DerivedCoolingRate:
		return "coolrate"
	case DerivedCoolingTime:
		return "tcool"
	}
	return fmt.Sprintf("DerivedKind(%d)", int(k))
}

// FieldSpec names either a primitive field stored in the file or a
// derived field computed from primitives.
type FieldSpec struct {
	Name    string // primitive field name; empty for derived specs
	Derived DerivedKind
}

// Field returns a FieldSpec for a primitive field.
func Field(name string) FieldSpec {
	return FieldSpec{Name: name}
}

// Derived returns a FieldSpec for a derived field.
func Derived(kind DerivedKind) FieldSpec {
	return FieldSpec{Derived: kind}
}

func (s FieldSpec) String() string {
	if s.Derived != DerivedNone {
		return "derived:" + s.Derived.String()
	}
	return s.Name
}

// ParseFieldSpec resolves a field name, honoring the "derived:" namespace.
// Unknown derived names return ErrUnknownDerived.
func ParseFieldSpec(s string) (FieldSpec, error) {
	after, ok := strings.CutPrefix(s, "derived:")
	if !ok {
		return Field(s), nil
	}
	switch strings.TrimSpace(after) {
	case "temp":
		return Derived(DerivedTemperature), nil
	case "velr":
		return Derived(DerivedRadialVelocity), nil
	case "coolrate":
		return Derived(DerivedCoolingRate), nil
	case "tcool":
		return Derived(DerivedCoolingTime), nil
	}
	return FieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownDerived, strings.TrimSpace(after))
}

// Primitive inputs of the derived fields, in file field naming.
const (
	fieldDensity = "dens"
	fieldEint    = "eint"
	fieldVelX    = "velx"
	fieldVelY    = "vely"
	fieldVelZ    = "velz"
)

// temperatureFactor converts eint/dens in code units to the reported
// temperature: mu*m_p/(k_B*(gamma-1)) * v0^2 / TempNorm.
func temperatureFactor(sys *units.System) float64 {
	v := sys.Velocity()
	return sys.Mu * sys.ProtonMass / (sys.Boltzmann * (sys.Gamma - 1)) * v * v / sys.TempNorm
}

// temperature computes T from code-unit eint and dens, NaN where the
// density is not positive.
func temperature(eint, dens, factor float64) float64 {
	if !(dens > 0) {
		return math.NaN()
	}
	return eint / dens * factor
}

// cgsState converts code-unit eint and dens to CGS pressure, density and
// temperature.
func cgsState(eint, dens float64, sys *units.System) (presCGS, rhoCGS, tempCGS float64) {
	presCGS = eint * (sys.Gamma - 1) * sys.Pressure()
	rhoCGS = dens * sys.Density()
	if !(rhoCGS > 0) {
		return presCGS, rhoCGS, math.NaN()
	}
	tempCGS = presCGS * sys.Mu * sys.ProtonMass / (rhoCGS * sys.Boltzmann)
	return presCGS, rhoCGS, tempCGS
}

// coolingRate is the CGS volumetric cooling rate rho^2 Lambda(T)/(mu m_p)^2.
func coolingRate(eint, dens float64, sys *units.System) float64 {
	_, rhoCGS, tempCGS := cgsState(eint, dens, sys)
	lambda := sys.Cooling.Lambda(tempCGS)
	mump := sys.Mu * sys.ProtonMass
	return rhoCGS * rhoCGS * lambda / (mump * mump)
}

// coolingTimeMyr is the cooling timescale gamma*P/((gamma-1)*rho^2*Lambda)
// scaled by (mu m_p)^2, in megayears.
func coolingTimeMyr(eint, dens float64, sys *units.System) float64 {
	presCGS, rhoCGS, tempCGS := cgsState(eint, dens, sys)
	lambda := sys.Cooling.Lambda(tempCGS)
	mump := sys.Mu * sys.ProtonMass
	tCool := sys.Gamma * presCGS * mump * mump / ((sys.Gamma - 1) * rhoCGS * rhoCGS * lambda)
	return tCool / units.SecondsPerMyr
}

// derivedUnits resolves the unit system for a derived extraction.
func derivedUnits(sys *units.System) (*units.System, error) {
	if sys == nil {
		sys = units.Default()
	}
	if sys.Cooling == nil {
		return nil, fmt.Errorf("unit system has no cooling curve")
	}
	return sys, nil
}

// extractDerivedSlice evaluates a derived field over 2D slices. Each
// primitive input is extracted by an independent scan of the file.
func (f *File) extractDerivedSlice(spec FieldSpec, opts SliceOptions) (*SliceResult, error) {
	sys := opts.Units
	if sys == nil {
		sys = units.Default()
	}

	switch spec.Derived {
	case DerivedTemperature:
		dens, err := f.extractFieldSlice(fieldDensity, opts)
		if err != nil {
			return nil, err
		}
		eint, err := f.extractFieldSlice(fieldEint, opts)
		if err != nil {
			return nil, err
		}
		factor := temperatureFactor(sys)
		return combineSlices(eint, dens, func(e, d float64) float64 {
			return temperature(e, d, factor)
		})

	case DerivedRadialVelocity:
		vx, err := f.extractFieldSlice(fieldVelX, opts)
		if err != nil {
			return nil, err
		}
		vy, err := f.extractFieldSlice(fieldVelY, opts)
		if err != nil {
			return nil, err
		}
		vz, err := f.extractFieldSlice(fieldVelZ, opts)
		if err != nil {
			return nil, err
		}
		res, err := combineSlices(vx, vy, func(x, y float64) float64 { return x*x + y*y })
		if err != nil {
			return nil, err
		}
		return combineSlices(res, vz, func(sq, z float64) float64 { return math.Sqrt(sq + z*z) })

	case DerivedCoolingRate, DerivedCoolingTime:
		sys, err := derivedUnits(opts.Units)
		if err != nil {
			return nil, err
		}
		eint, err := f.extractFieldSlice(fieldEint, opts)
		if err != nil {
			return nil, err
		}
		dens, err := f.extractFieldSlice(fieldDensity, opts)
		if err != nil {
			return nil, err
		}
		op := coolingRate
		if spec.Derived == DerivedCoolingTime {
			op = coolingTimeMyr
		}
		return combineSlices(eint, dens, func(e, d float64) float64 { return op(e, d, sys) })
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownDerived, spec.Derived)
}

// ExtractDerivedVolume evaluates a derived field over full 3D blocks.
// A nil unit system uses units.Default().
func (f *File) ExtractDerivedVolume(kind DerivedKind, sys *units.System) (*VolumeResult, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if sys == nil {
		sys = units.Default()
	}

	switch kind {
	case DerivedTemperature:
		dens, err := f.extractFieldVolume(fieldDensity)
		if err != nil {
			return nil, err
		}
		eint, err := f.extractFieldVolume(fieldEint)
		if err != nil {
			return nil, err
		}
		factor := temperatureFactor(sys)
		return combineVolumes(eint, dens, func(e, d float64) float64 {
			return temperature(e, d, factor)
		})

	case DerivedRadialVelocity:
		vx, err := f.extractFieldVolume(fieldVelX)
		if err != nil {
			return nil, err
		}
		vy, err := f.extractFieldVolume(fieldVelY)
		if err != nil {
			return nil, err
		}
		vz, err := f.extractFieldVolume(fieldVelZ)
		if err != nil {
			return nil, err
		}
		res, err := combineVolumes(vx, vy, func(x, y float64) float64 { return x*x + y*y })
		if err != nil {
			return nil, err
		}
		scale := sys.VelrScale
		return combineVolumes(res, vz, func(sq, z float64) float64 {
			return math.Sqrt(sq+z*z) * scale
		})

	case DerivedCoolingRate, DerivedCoolingTime:
		sys, err := derivedUnits(sys)
		if err != nil {
			return nil, err
		}
		eint, err := f.extractFieldVolume(fieldEint)
		if err != nil {
			return nil, err
		}
		dens, err := f.extractFieldVolume(fieldDensity)
		if err != nil {
			return nil, err
		}
		op := coolingRate
		if kind == DerivedCoolingTime {
			op = coolingTimeMyr
		}
		return combineVolumes(eint, dens, func(e, d float64) float64 { return op(e, d, sys) })
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownDerived, kind)
}

// combineSlices applies op element-wise across two slice results from the
// same extraction geometry, carrying extents and shape from the first.
func combineSlices(a, b *SliceResult, op func(x, y float64) float64) (*SliceResult, error) {
	if a.NumBlocks != b.NumBlocks {
		return nil, fmt.Errorf("mismatched extractions: %d blocks vs %d", a.NumBlocks, b.NumBlocks)
	}
	out := &SliceResult{
		Blocks:     make([]Slice2D, a.NumBlocks),
		Extents:    a.Extents,
		NumBlocks:  a.NumBlocks,
		BlockShape: a.BlockShape,
	}
	for i := range a.Blocks {
		ab, bb := a.Blocks[i], b.Blocks[i]
		if len(ab.Data) != len(bb.Data) {
			return nil, fmt.Errorf("block %d: mismatched sizes %d vs %d", i, len(ab.Data), len(bb.Data))
		}
		data := make([]float64, len(ab.Data))
		for j := range data {
			data[j] = op(ab.Data[j], bb.Data[j])
		}
		out.Blocks[i] = Slice2D{Data: data, Rows: ab.Rows, Cols: ab.Cols}
	}
	return out, nil
}

// combineVolumes applies op element-wise across two volume results,
// carrying coordinates, extents and logical addresses from the first.
func combineVolumes(a, b *VolumeResult, op func(x, y float64) float64) (*VolumeResult, error) {
	if a.NumBlocks != b.NumBlocks {
		return nil, fmt.Errorf("mismatched extractions: %d blocks vs %d", a.NumBlocks, b.NumBlocks)
	}
	out := &VolumeResult{
		Blocks:     make([]Block3D, a.NumBlocks),
		NumBlocks:  a.NumBlocks,
		BlockShape: a.BlockShape,
	}
	for i := range a.Blocks {
		ab, bb := &a.Blocks[i], &b.Blocks[i]
		if len(ab.Data) != len(bb.Data) {
			return nil, fmt.Errorf("block %d: mismatched sizes %d vs %d", i, len(ab.Data), len(bb.Data))
		}
		data := make([]float64, len(ab.Data))
		for j := range data {
			data[j] = op(ab.Data[j], bb.Data[j])
		}
		blk := *ab
		blk.Data = data
		out.Blocks[i] = blk
	}
	return out, nil
}
