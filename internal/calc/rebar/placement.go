package rebar

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the reinforcement kind of a placement. Values are the codes used in exports.
type Kind string

const (
	KindFooting Kind = "zapata"
	KindSlab    Kind = "losa"
	KindBeam    Kind = "viga"
	KindColumn  Kind = "columna"
	KindTieBeam Kind = "dala"
	KindPier    Kind = "castillo"
	KindWall    Kind = "muro"
)

// Kinds lists every accepted kind in display order.
var Kinds = []Kind{KindFooting, KindSlab, KindBeam, KindColumn, KindTieBeam, KindPier, KindWall}

var kindAliases = map[string]Kind{
	"footing":  KindFooting,
	"slab":     KindSlab,
	"beam":     KindBeam,
	"column":   KindColumn,
	"tie-beam": KindTieBeam,
	"pier":     KindPier,
	"wall":     KindWall,
}

// ParseKind accepts either the export code or its English name, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	k, ok := kindAliases[s]
	return k, ok
}

func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Placement is one rebar line tied to a structural element.
type Placement struct {
	ID           int     `json:"id"`
	ElementName  string  `json:"element_name"`
	Location     string  `json:"location"`
	Axis         string  `json:"axis"`
	GridLine     string  `json:"grid_line"`
	Diameter     int     `json:"diameter"`
	Kind         Kind    `json:"reinforcement_kind"`
	LengthM      float64 `json:"length_m"`
	Hook1M       float64 `json:"hook1_m"`
	Hook2M       float64 `json:"hook2_m"`
	PieceCount   int     `json:"piece_count"`
	ElementCount int     `json:"element_count"`
}

// TotalLength is the bar length including both hooks, in meters.
func (p Placement) TotalLength() float64 {
	return p.LengthM + p.Hook1M + p.Hook2M
}

// SubtotalLinearMeters is the bar material this line needs across all pieces and elements.
func (p Placement) SubtotalLinearMeters() float64 {
	return p.TotalLength() * float64(p.PieceCount) * float64(p.ElementCount)
}

// Fields is the input for add and update. Nil members are "not supplied": on add they take
// their defaults, on update they keep the stored value.
type Fields struct {
	ElementName  *string  `json:"element_name,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Axis         *string  `json:"axis,omitempty"`
	GridLine     *string  `json:"grid_line,omitempty"`
	Diameter     *int     `json:"diameter,omitempty"`
	Kind         *string  `json:"reinforcement_kind,omitempty"`
	LengthM      *float64 `json:"length_m,omitempty"`
	Hook1M       *float64 `json:"hook1_m,omitempty"`
	Hook2M       *float64 `json:"hook2_m,omitempty"`
	PieceCount   *int     `json:"piece_count,omitempty"`
	ElementCount *int     `json:"element_count,omitempty"`
}

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when an id or position does not address a stored placement.
type NotFoundError struct {
	ID       int
	Position int
}

func (e *NotFoundError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("placement at position %d not found", e.Position)
	}
	return fmt.Sprintf("placement %d not found", e.ID)
}

func newPlacement() Placement {
	return Placement{PieceCount: 1, ElementCount: 1}
}

// apply copies the supplied members of f onto p. An unrecognised kind is kept verbatim
// so Validate reports it in field order.
func (f Fields) apply(p Placement) Placement {
	if f.ElementName != nil {
		p.ElementName = strings.TrimSpace(*f.ElementName)
	}
	if f.Location != nil {
		p.Location = *f.Location
	}
	if f.Axis != nil {
		p.Axis = *f.Axis
	}
	if f.GridLine != nil {
		p.GridLine = *f.GridLine
	}
	if f.Diameter != nil {
		p.Diameter = *f.Diameter
	}
	if f.Kind != nil {
		if k, ok := ParseKind(*f.Kind); ok {
			p.Kind = k
		} else {
			p.Kind = Kind(*f.Kind)
		}
	}
	if f.LengthM != nil {
		p.LengthM = *f.LengthM
	}
	if f.Hook1M != nil {
		p.Hook1M = *f.Hook1M
	}
	if f.Hook2M != nil {
		p.Hook2M = *f.Hook2M
	}
	if f.PieceCount != nil {
		p.PieceCount = *f.PieceCount
	}
	if f.ElementCount != nil {
		p.ElementCount = *f.ElementCount
	}
	return p
}

// Validate checks p in field declaration order and returns the first violation.
func (t *WeightTable) Validate(p Placement) error {
	return t.validate(p, true)
}

func (t *WeightTable) validate(p Placement, hasLength bool) error {
	if p.ElementName == "" {
		return &ValidationError{Field: "element_name", Reason: "required"}
	}
	if p.Diameter <= 0 {
		return &ValidationError{Field: "diameter", Reason: "must be positive"}
	}
	if t.policy == PolicyReject && !t.Known(p.Diameter) {
		return &ValidationError{Field: "diameter", Reason: fmt.Sprintf("no weight for diameter %d", p.Diameter)}
	}
	if p.Kind == "" {
		return &ValidationError{Field: "reinforcement_kind", Reason: "required"}
	}
	if !p.Kind.Valid() {
		return &ValidationError{Field: "reinforcement_kind", Reason: fmt.Sprintf("unknown kind %q", p.Kind)}
	}
	lengths := []struct {
		name string
		v    float64
	}{
		{"length_m", p.LengthM},
		{"hook1_m", p.Hook1M},
		{"hook2_m", p.Hook2M},
	}
	for _, l := range lengths {
		if l.name == "length_m" && !hasLength {
			return &ValidationError{Field: l.name, Reason: "required"}
		}
		if math.IsNaN(l.v) || math.IsInf(l.v, 0) {
			return &ValidationError{Field: l.name, Reason: "must be a finite number"}
		}
		if l.v < 0 {
			return &ValidationError{Field: l.name, Reason: "must be >= 0"}
		}
	}
	if p.PieceCount < 1 {
		return &ValidationError{Field: "piece_count", Reason: "must be >= 1"}
	}
	if p.ElementCount < 1 {
		return &ValidationError{Field: "element_count", Reason: "must be >= 1"}
	}
	if sub := p.SubtotalLinearMeters(); math.IsInf(sub, 0) || sub > MaxSubtotalLinearMeters {
		return &ValidationError{Field: "length_m", Reason: fmt.Sprintf("subtotal exceeds %.0f m", MaxSubtotalLinearMeters)}
	}
	return nil
}
