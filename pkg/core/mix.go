package core

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/anggasct/trafficsim/pkg/utils"
)

// MixTolerance is how far the probabilities of a mix may stray from 1
const MixTolerance = 1e-6

// DefaultVehicleMix returns the share of each category used when none is configured
func DefaultVehicleMix() map[VehicleType]float64 {
	return map[VehicleType]float64{
		Car:  0.95,
		Bus:  0.03,
		Bike: 0.02,
	}
}

// ValidateMix checks that every category is known, every probability is
// non-negative and that they sum to 1.
func ValidateMix(mix map[VehicleType]float64) error {
	if len(mix) == 0 {
		return utils.NewConfigurationError("vehicle_mix", "at least one vehicle type is required")
	}

	for t, p := range mix {
		if !t.Valid() {
			return utils.NewConfigurationError("vehicle_mix", fmt.Sprintf("unknown vehicle type %q", t))
		}
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return utils.NewConfigurationError("vehicle_mix", fmt.Sprintf("probability of %s must be a non-negative number", t)).
				WithDetail("probability", p)
		}
	}

	sum := lo.Sum(lo.Values(mix))
	if math.Abs(sum-1) > MixTolerance {
		return utils.NewConfigurationError("vehicle_mix", "probabilities must sum to 1").
			WithDetail("sum", sum)
	}
	return nil
}

// VehicleMix samples vehicle categories from a discrete distribution
type VehicleMix struct {
	types []VehicleType
	dist  distuv.Categorical
}

// NewVehicleMix validates mix and builds a sampler drawing from src
func NewVehicleMix(mix map[VehicleType]float64, src rand.Source) (*VehicleMix, error) {
	if err := ValidateMix(mix); err != nil {
		return nil, err
	}

	// map iteration order is random; fix it so a seed reproduces a run
	types := lo.Keys(mix)
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	weights := lo.Map(types, func(t VehicleType, _ int) float64 { return mix[t] })

	return &VehicleMix{
		types: types,
		dist:  distuv.NewCategorical(weights, src),
	}, nil
}

// Sample draws one category
func (m *VehicleMix) Sample() VehicleType {
	if len(m.types) == 1 {
		return m.types[0]
	}
	return m.types[int(m.dist.Rand())]
}

// Probability returns the configured share of t
func (m *VehicleMix) Probability(t VehicleType) float64 {
	for i, vt := range m.types {
		if vt == t {
			return m.dist.Prob(float64(i))
		}
	}
	return 0
}
