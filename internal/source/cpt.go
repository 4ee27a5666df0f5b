package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/flowcentral/flowcentral/internal/engine"
)

// The upstream risk view prefixes every data row with two label cells, and
// when no "Utilization" row label is present the utilization numbers sit in
// the tenth row of the fixed layout.
const (
	riskLabelCells         = 2
	utilizationRowFallback = 9
)

// RiskTables holds the utilization-by-deadline tables for one facility.
// Aggregated facilities publish a single combined table, reported here as
// Singles; all others publish separate singles and multis tables.
type RiskTables struct {
	Singles *engine.Table
	Multis  *engine.Table
}

// FetchCPT retrieves and parses the CPT risk view for one facility.
func FetchCPT(ctx context.Context, client *http.Client, url string, aggregated bool) (*RiskTables, error) {
	body, err := get(ctx, client, url)
	if err != nil {
		return nil, fmt.Errorf("cpt fetch: %w", err)
	}
	defer body.Close()

	tables, err := ExtractTables(body)
	if err != nil {
		return nil, fmt.Errorf("cpt fetch: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("cpt fetch: no tables in risk view")
	}

	out := &RiskTables{}
	first, err := riskTable(tables[0])
	if err != nil {
		return nil, fmt.Errorf("cpt fetch: singles table: %w", err)
	}
	out.Singles = first

	if !aggregated && len(tables) > 1 {
		second, err := riskTable(tables[1])
		if err != nil {
			return nil, fmt.Errorf("cpt fetch: multis table: %w", err)
		}
		out.Multis = second
	}
	return out, nil
}

// riskTable converts one parsed risk-view table into an engine.Table:
// the header row past the label cells carries the deadline columns, and the
// utilization row carries the matching percentage values.
func riskTable(t HTMLTable) (*engine.Table, error) {
	if len(t.Headers) <= riskLabelCells {
		return nil, fmt.Errorf("header row has %d cells, want > %d", len(t.Headers), riskLabelCells)
	}

	values, ok := t.RowByLabel("Utilization")
	if !ok {
		if len(t.Rows) <= utilizationRowFallback {
			return nil, fmt.Errorf("no utilization row (table has %d rows)", len(t.Rows))
		}
		values = t.Rows[utilizationRowFallback]
	}
	if len(values) <= riskLabelCells {
		return nil, fmt.Errorf("utilization row has %d cells, want > %d", len(values), riskLabelCells)
	}

	deadlines := t.Headers[riskLabelCells:]
	vals := values[riskLabelCells:]
	if len(vals) > len(deadlines) {
		vals = vals[:len(deadlines)]
	}
	return &engine.Table{Deadlines: deadlines[:len(vals)], Values: vals}, nil
}
