package rebar

import (
	"fmt"
	"math"
	"sort"
)

// StandardBarLengthM is the stock length used to express linear meters as purchasable bars.
const StandardBarLengthM = 12.0

// MaxSubtotalLinearMeters caps the material of a single placement so bar counts fit an int32.
const MaxSubtotalLinearMeters = StandardBarLengthM * math.MaxInt32

// DiameterPolicy decides what happens to a diameter that has no weight entry.
type DiameterPolicy string

const (
	// PolicyZero keeps the placement and counts its weight as 0 kg.
	PolicyZero DiameterPolicy = "zero"
	// PolicyReject refuses the placement with a ValidationError on diameter.
	PolicyReject DiameterPolicy = "reject"
)

// ParsePolicy maps a config value to a DiameterPolicy. Empty means PolicyZero.
func ParsePolicy(s string) (DiameterPolicy, error) {
	switch DiameterPolicy(s) {
	case "", PolicyZero:
		return PolicyZero, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", fmt.Errorf("rebar: unknown diameter policy %q", s)
}

// kg per meter, keyed by nominal diameter (eighths of an inch)
var defaultWeights = map[int]float64{
	2:  0.248,
	3:  0.557,
	4:  0.996,
	5:  1.56,
	6:  2.25,
	8:  3.975,
	10: 6.225,
	12: 8.938,
}

// WeightTable maps nominal diameters to linear weight. The zero value is not usable;
// build one with NewWeightTable.
type WeightTable struct {
	weights map[int]float64
	policy  DiameterPolicy
}

func NewWeightTable(policy DiameterPolicy) *WeightTable {
	if policy == "" {
		policy = PolicyZero
	}
	w := make(map[int]float64, len(defaultWeights))
	for d, kg := range defaultWeights {
		w[d] = kg
	}
	return &WeightTable{weights: w, policy: policy}
}

func (t *WeightTable) Policy() DiameterPolicy {
	return t.policy
}

// WeightPerMeter returns kg/m for diameter, or 0 when the diameter is not in the table.
func (t *WeightTable) WeightPerMeter(diameter int) float64 {
	return t.weights[diameter]
}

func (t *WeightTable) Known(diameter int) bool {
	_, ok := t.weights[diameter]
	return ok
}

// Diameters returns the known diameters in ascending order.
func (t *WeightTable) Diameters() []int {
	out := make([]int, 0, len(t.weights))
	for d := range t.weights {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

type WeightEntry struct {
	Diameter int     `json:"diameter"`
	KgPerM   float64 `json:"kg_per_m"`
}

// Entries lists the table in ascending diameter order.
func (t *WeightTable) Entries() []WeightEntry {
	ds := t.Diameters()
	out := make([]WeightEntry, 0, len(ds))
	for _, d := range ds {
		out = append(out, WeightEntry{Diameter: d, KgPerM: t.weights[d]})
	}
	return out
}
