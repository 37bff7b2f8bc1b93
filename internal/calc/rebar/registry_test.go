package rebar

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// input builds a complete add payload; callers override what they need.
func input(name string, diameter int, length float64, pieces, elements int) Fields {
	return Fields{
		ElementName:  ptr(name),
		Diameter:     ptr(diameter),
		Kind:         ptr("zapata"),
		LengthM:      ptr(length),
		PieceCount:   ptr(pieces),
		ElementCount: ptr(elements),
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(NewWeightTable(PolicyZero))
}

func TestRegistryAdd_DefaultsAndIDs(t *testing.T) {
	reg := newTestRegistry()
	p, err := reg.Add(Fields{
		ElementName: ptr("  Zapata A1 "),
		Diameter:    ptr(4),
		Kind:        ptr("footing"),
		LengthM:     ptr(1.5),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p.ID != 1 {
		t.Errorf("ID = %d, want 1", p.ID)
	}
	if p.ElementName != "Zapata A1" {
		t.Errorf("ElementName = %q, want trimmed", p.ElementName)
	}
	if p.Kind != KindFooting {
		t.Errorf("Kind = %q, want %q", p.Kind, KindFooting)
	}
	if p.Hook1M != 0 || p.Hook2M != 0 {
		t.Errorf("hooks = %v/%v, want 0/0", p.Hook1M, p.Hook2M)
	}
	if p.PieceCount != 1 || p.ElementCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", p.PieceCount, p.ElementCount)
	}

	p2, err := reg.Add(input("Losa", 3, 2, 1, 1))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p2.ID != 2 {
		t.Errorf("second ID = %d, want 2", p2.ID)
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
}

func TestRegistryAdd_Validation(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(f *Fields)
		field string
	}{
		{"missing name", func(f *Fields) { f.ElementName = nil }, "element_name"},
		{"blank name", func(f *Fields) { f.ElementName = ptr("   ") }, "element_name"},
		{"missing diameter", func(f *Fields) { f.Diameter = nil }, "diameter"},
		{"negative diameter", func(f *Fields) { f.Diameter = ptr(-3) }, "diameter"},
		{"missing kind", func(f *Fields) { f.Kind = nil }, "reinforcement_kind"},
		{"unknown kind", func(f *Fields) { f.Kind = ptr("zapatilla") }, "reinforcement_kind"},
		{"missing length", func(f *Fields) { f.LengthM = nil }, "length_m"},
		{"negative length", func(f *Fields) { f.LengthM = ptr(-0.1) }, "length_m"},
		{"NaN length", func(f *Fields) { f.LengthM = ptr(math.NaN()) }, "length_m"},
		{"negative hook1", func(f *Fields) { f.Hook1M = ptr(-1.0) }, "hook1_m"},
		{"infinite hook2", func(f *Fields) { f.Hook2M = ptr(math.Inf(1)) }, "hook2_m"},
		{"zero pieces", func(f *Fields) { f.PieceCount = ptr(0) }, "piece_count"},
		{"zero elements", func(f *Fields) { f.ElementCount = ptr(0) }, "element_count"},
		{"subtotal overflows", func(f *Fields) { f.LengthM = ptr(1e300); f.PieceCount = ptr(1_000_000_000); f.ElementCount = ptr(1_000_000_000) }, "length_m"},
		{"subtotal over cap", func(f *Fields) { f.LengthM = ptr(1e21) }, "length_m"},
		{"first field wins", func(f *Fields) { f.ElementName = ptr(""); f.PieceCount = ptr(0) }, "element_name"},
		{"kind before length", func(f *Fields) { f.Kind = ptr("x"); f.LengthM = nil }, "reinforcement_kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry()
			f := input("Viga V1", 3, 2, 1, 1)
			tt.mod(&f)
			_, err := reg.Add(f)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Add error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
			if reg.Len() != 0 {
				t.Errorf("Len = %d after failed add, want 0", reg.Len())
			}
		})
	}
}

func TestRegistryAdd_ZeroLengthAllowed(t *testing.T) {
	reg := newTestRegistry()
	if _, err := reg.Add(input("Muro", 3, 0, 1, 1)); err != nil {
		t.Fatalf("Add zero length: %v", err)
	}
}

func TestRegistryAdd_SubtotalAtCap(t *testing.T) {
	reg := newTestRegistry()
	p, err := reg.Add(input("Muro", 3, MaxSubtotalLinearMeters, 1, 1))
	if err != nil {
		t.Fatalf("Add at cap: %v", err)
	}
	res := Aggregate(reg.Table(), reg.Snapshot())
	if res[0].StandardBarsNeeded != math.MaxInt32 {
		t.Errorf("StandardBarsNeeded = %d, want %d", res[0].StandardBarsNeeded, math.MaxInt32)
	}

	_, err = reg.Update(p.ID, Fields{PieceCount: ptr(2)})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "length_m" {
		t.Errorf("Update past cap = %v, want length_m ValidationError", err)
	}
}

func TestRegistryAdd_UnknownDiameterPolicy(t *testing.T) {
	lenient := NewRegistry(NewWeightTable(PolicyZero))
	if _, err := lenient.Add(input("Pila", 14, 1, 1, 1)); err != nil {
		t.Errorf("zero policy Add(14): %v", err)
	}

	strict := NewRegistry(NewWeightTable(PolicyReject))
	_, err := strict.Add(input("Pila", 14, 1, 1, 1))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "diameter" {
		t.Errorf("reject policy Add(14) = %v, want diameter ValidationError", err)
	}
	if _, err := strict.Add(input("Pila", 12, 1, 1, 1)); err != nil {
		t.Errorf("reject policy Add(12): %v", err)
	}
}

func TestRegistryUpdate_Partial(t *testing.T) {
	reg := newTestRegistry()
	orig, _ := reg.Add(Fields{
		ElementName: ptr("Columna C1"),
		Location:    ptr("Planta baja"),
		Axis:        ptr("A"),
		GridLine:    ptr("1"),
		Diameter:    ptr(5),
		Kind:        ptr("columna"),
		LengthM:     ptr(3.0),
		Hook1M:      ptr(0.2),
		PieceCount:  ptr(4),
	})

	got, err := reg.Update(orig.ID, Fields{PieceCount: ptr(6), Hook2M: ptr(0.3)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := orig
	want.PieceCount = 6
	want.Hook2M = 0.3
	if got != want {
		t.Errorf("Update = %+v, want %+v", got, want)
	}
	if stored, _ := reg.Get(orig.ID); stored != want {
		t.Errorf("stored = %+v, want %+v", stored, want)
	}
}

func TestRegistryUpdate_InvalidLeavesRecord(t *testing.T) {
	reg := newTestRegistry()
	orig, _ := reg.Add(input("Dala D1", 3, 2, 2, 1))
	before := reg.Snapshot()

	_, err := reg.Update(orig.ID, Fields{LengthM: ptr(5.0), PieceCount: ptr(0)})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "piece_count" {
		t.Fatalf("Update error = %v, want piece_count ValidationError", err)
	}
	if after := reg.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("snapshot changed after failed update: %+v -> %+v", before, after)
	}
}

func TestRegistryUpdate_NotFound(t *testing.T) {
	reg := newTestRegistry()
	reg.Add(input("Losa", 3, 1, 1, 1))
	_, err := reg.Update(42, Fields{LengthM: ptr(2.0)})
	var nerr *NotFoundError
	if !errors.As(err, &nerr) || nerr.ID != 42 {
		t.Errorf("Update(42) = %v, want NotFoundError{ID: 42}", err)
	}
}

func TestRegistryRemove_StableIDs(t *testing.T) {
	reg := newTestRegistry()
	a, _ := reg.Add(input("A", 3, 1, 1, 1))
	b, _ := reg.Add(input("B", 3, 1, 1, 1))
	c, _ := reg.Add(input("C", 3, 1, 1, 1))

	if err := reg.Remove(a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	snap := reg.Snapshot()
	if len(snap) != 2 || snap[0].ID != b.ID || snap[1].ID != c.ID {
		t.Fatalf("snapshot = %+v, want [B C]", snap)
	}

	// c keeps its id even though it moved up one row
	if _, err := reg.Update(c.ID, Fields{ElementName: ptr("C2")}); err != nil {
		t.Fatalf("Update(c): %v", err)
	}
	if got, _ := reg.Get(c.ID); got.ElementName != "C2" {
		t.Errorf("c.ElementName = %q, want C2", got.ElementName)
	}

	d, _ := reg.Add(input("D", 3, 1, 1, 1))
	if d.ID != 4 {
		t.Errorf("ID after removal = %d, want 4 (never reused)", d.ID)
	}

	var nerr *NotFoundError
	if err := reg.Remove(a.ID); !errors.As(err, &nerr) {
		t.Errorf("second Remove(a) = %v, want NotFoundError", err)
	}
}

func TestRegistryPositions(t *testing.T) {
	reg := newTestRegistry()
	reg.Add(input("A", 3, 1, 1, 1))
	reg.Add(input("B", 3, 1, 1, 1))
	reg.Add(input("C", 3, 1, 1, 1))

	if err := reg.RemoveAt(2); err != nil {
		t.Fatalf("RemoveAt(2): %v", err)
	}
	p, err := reg.UpdateAt(2, Fields{ElementName: ptr("C*")})
	if err != nil {
		t.Fatalf("UpdateAt(2): %v", err)
	}
	if p.ID != 3 {
		t.Errorf("UpdateAt(2) touched id %d, want 3", p.ID)
	}

	for _, pos := range []int{0, -1, 3} {
		var nerr *NotFoundError
		if err := reg.RemoveAt(pos); !errors.As(err, &nerr) {
			t.Errorf("RemoveAt(%d) = %v, want NotFoundError", pos, err)
		}
		if _, err := reg.UpdateAt(pos, Fields{}); !errors.As(err, &nerr) {
			t.Errorf("UpdateAt(%d) = %v, want NotFoundError", pos, err)
		}
	}
}

// An out-of-range delete is rejected and changes nothing.
func TestRegistryRemoveAt_OutOfRangeNoop(t *testing.T) {
	reg := newTestRegistry()
	reg.Add(input("A", 3, 2, 4, 1))
	reg.Add(input("B", 4, 1, 1, 2))
	before := reg.Snapshot()

	err := reg.RemoveAt(5)
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("RemoveAt(5) = %v, want NotFoundError", err)
	}
	if after := reg.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("snapshot changed: %+v -> %+v", before, after)
	}
}

func TestRegistryClear(t *testing.T) {
	reg := newTestRegistry()
	reg.Add(input("A", 3, 2, 1, 1))
	reg.Add(input("B", 8, 2, 1, 1))
	reg.Clear()
	reg.Clear()

	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
	if res := Aggregate(reg.Table(), reg.Snapshot()); len(res) != 0 {
		t.Errorf("Aggregate after Clear = %+v, want empty", res)
	}
	p, _ := reg.Add(input("C", 3, 1, 1, 1))
	if p.ID != 3 {
		t.Errorf("ID after Clear = %d, want 3", p.ID)
	}
}

func TestRegistrySnapshot_IsCopy(t *testing.T) {
	reg := newTestRegistry()
	p, _ := reg.Add(input("A", 3, 2, 1, 1))
	snap := reg.Snapshot()
	snap[0].ElementName = "mutated"
	reg.Update(p.ID, Fields{LengthM: ptr(9.0)})

	if snap[0].LengthM != 2 {
		t.Errorf("held snapshot saw later update: LengthM = %v", snap[0].LengthM)
	}
	if got, _ := reg.Get(p.ID); got.ElementName != "A" {
		t.Errorf("registry saw snapshot mutation: %q", got.ElementName)
	}
}
