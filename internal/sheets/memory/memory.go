package memory

import (
	"context"
	"fmt"
	"sync"

	"pfin/internal/core"
)

// Store is an in-memory worksheet collaborator used by tests and the
// memory backend of the CLI. Grids are seeded per worksheet; published
// tables are retained for inspection.
type Store struct {
	mu        sync.Mutex
	grids     map[string]gridPair
	published map[string][]core.SummaryTable
}

type gridPair struct {
	unformatted core.Grid
	formatted   core.Grid
}

func New() *Store {
	return &Store{
		grids:     map[string]gridPair{},
		published: map[string][]core.SummaryTable{},
	}
}

// SetGrids seeds both snapshots for a worksheet.
func (s *Store) SetGrids(worksheet string, unformatted, formatted core.Grid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids[worksheet] = gridPair{
		unformatted: cloneGrid(unformatted),
		formatted:   cloneGrid(formatted),
	}
}

// ReadGrids implements sheets.GridReader.
func (s *Store) ReadGrids(_ context.Context, worksheet string) (core.Grid, core.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.grids[worksheet]
	if !ok {
		return nil, nil, fmt.Errorf("worksheet %q not seeded", worksheet)
	}
	return cloneGrid(pair.unformatted), cloneGrid(pair.formatted), nil
}

// Publish implements sheets.SummaryPublisher.
func (s *Store) Publish(_ context.Context, worksheet string, table core.SummaryTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[worksheet] = append(s.published[worksheet], table)
	return nil
}

// Published returns all tables published to a worksheet, in order.
func (s *Store) Published(worksheet string) []core.SummaryTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.SummaryTable(nil), s.published[worksheet]...)
}

func cloneGrid(g core.Grid) core.Grid {
	out := make(core.Grid, len(g))
	for i, row := range g {
		clone := make([]any, len(row))
		copy(clone, row)
		out[i] = clone
	}
	return out
}

// NewWithSample returns a store seeded with a small August 2021 worksheet
// under the given name, useful for dry runs without Google credentials.
func NewWithSample(worksheet string) *Store {
	const width = 26

	row := func(cells map[int]any) []any {
		r := make([]any, width)
		for i := range r {
			r[i] = ""
		}
		for col, v := range cells {
			r[col-1] = v
		}
		return r
	}
	data := func(ordinal string, amount float64, where, who, category, item, incomings string, serial float64, pct float64) []any {
		return row(map[int]any{
			1: ordinal, 2: amount,
			18: where, 19: who, 20: category, 21: item, 22: incomings,
			23: serial, 25: pct,
		})
	}

	unformatted := core.Grid{
		row(map[int]any{1: "pfin 202108"}),
		row(nil), row(nil), row(nil),
		row(nil),
		row(map[int]any{18: core.DefaultMarker}),
		data("1", 120.0, "market", "bob", "groceries", "weekly shop", "none", 44413.0, 50.0),
		data("2", 60.0, "cinema", "alice", "leisure", "tickets", "none", 44415.0, 100.0),
		data("3", 400.0, "bank", "bob", "transfer", "savings", "none", 44416.0, 100.0),
		data("R4", 180.0, "utilities", "both", "bills", "electricity", "rollup", 44417.0, 50.0),
	}

	formatted := cloneGrid(unformatted)
	for i, date := range map[int]string{6: "2021-08-05", 7: "2021-08-07", 8: "2021-08-08", 9: "2021-08-09"} {
		formatted[i][22] = date
	}

	s := New()
	s.SetGrids(worksheet, unformatted, formatted)
	return s
}
