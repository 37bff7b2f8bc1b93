package rebar

import "fmt"

type BatchInput struct {
	Items []Fields `json:"items"`
}

type BatchResult struct {
	Lines   []Line   `json:"lines"`
	Results []Result `json:"results"`
	Totals  Totals   `json:"totals"`
}

// BatchError wraps the validation failure of one item.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// CalculateBatch computes a take-off for a posted list without touching any session.
// Items are validated the same way Registry.Add does.
func CalculateBatch(table *WeightTable, in BatchInput) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, fmt.Errorf("no items")
	}
	reg := NewRegistry(table)
	for i, item := range in.Items {
		if _, err := reg.Add(item); err != nil {
			return BatchResult{}, &BatchError{Index: i, Err: err}
		}
	}
	snap := reg.Snapshot()
	sum := Compute(table, snap)
	return BatchResult{
		Lines:   Lines(snap),
		Results: sum.Results,
		Totals:  sum.Totals,
	}, nil
}
