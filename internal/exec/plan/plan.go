// Package plan implements the evaluation-plan pipeline a SELECT or
// DELETE statement is compiled into: a table scan, an optional equality
// selection, and (for SELECT) a projection.
//
// Grounded on the original source's EvalPlan hierarchy
// (TableScan/Select/Project in _examples/original_source/SQLExec.cpp
// and its supporting headers), flattened here since relation.Select
// already fuses the scan-and-filter step — project is the only stage
// layered on top.
package plan

import "github.com/tpkdev/lemurdb/internal/storage/relation"

// Plan is a compiled TableScan → Selection → Project pipeline over one
// relation. Where is nil for a plan with no WHERE clause. Columns nil
// makes Evaluate return full rows; the executor leaves it nil for a
// DELETE plan, where only handles matter, and passes the expanded
// column list for `SELECT *`.
type Plan struct {
	Relation *relation.Relation
	Where    relation.ValueDict
	Columns  []string
}

// Handles runs the scan-and-select stages, returning every qualifying
// row's handle.
func (p *Plan) Handles() ([]relation.Handle, error) {
	return p.Relation.Select(p.Where)
}

// Evaluate runs the full pipeline, materializing the qualifying,
// projected rows.
func (p *Plan) Evaluate() ([]relation.Row, error) {
	handles, err := p.Handles()
	if err != nil {
		return nil, err
	}
	rows := make([]relation.Row, 0, len(handles))
	for _, h := range handles {
		row, err := p.Relation.Project(h, p.Columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
