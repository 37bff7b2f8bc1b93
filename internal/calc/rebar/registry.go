package rebar

import "sync"

// Registry is the ordered working set of placements for one session. Placements keep the
// order they were added in; IDs are assigned monotonically and never reused, so an ID stays
// valid while rows before it are removed. Positions (1-based) are for display only.
type Registry struct {
	mu     sync.RWMutex
	table  *WeightTable
	items  []Placement
	nextID int
}

func NewRegistry(table *WeightTable) *Registry {
	return &Registry{table: table, nextID: 1}
}

func (r *Registry) Table() *WeightTable {
	return r.table
}

// Add fills defaults for missing optional fields, validates and appends a placement.
func (r *Registry) Add(f Fields) (Placement, error) {
	p := f.apply(newPlacement())
	if err := r.table.validate(p, f.LengthM != nil); err != nil {
		return Placement{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.items = append(r.items, p)
	return p, nil
}

// Update overwrites only the supplied fields of placement id. The merged record is
// validated as a whole; on error nothing changes.
func (r *Registry) Update(id int, f Fields) (Placement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return Placement{}, &NotFoundError{ID: id}
	}
	p := f.apply(r.items[i])
	if err := r.table.Validate(p); err != nil {
		return Placement{}, err
	}
	p.ID = id
	r.items[i] = p
	return p, nil
}

// Remove deletes placement id; later placements move up one position.
func (r *Registry) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// UpdateAt is Update addressed by 1-based display position.
func (r *Registry) UpdateAt(position int, f Fields) (Placement, error) {
	id, err := r.idAt(position)
	if err != nil {
		return Placement{}, err
	}
	return r.Update(id, f)
}

// RemoveAt is Remove addressed by 1-based display position.
func (r *Registry) RemoveAt(position int) error {
	id, err := r.idAt(position)
	if err != nil {
		return err
	}
	return r.Remove(id)
}

// Clear empties the registry. IDs keep counting from where they were.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}

func (r *Registry) Get(id int) (Placement, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return Placement{}, false
	}
	return r.items[i], true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Snapshot returns a copy of the placements in insertion order.
func (r *Registry) Snapshot() []Placement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Placement, len(r.items))
	copy(out, r.items)
	return out
}

// caller holds r.mu
func (r *Registry) indexOf(id int) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) idAt(position int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if position < 1 || position > len(r.items) {
		return 0, &NotFoundError{Position: position}
	}
	return r.items[position-1].ID, nil
}
