// Package ir declares the Query IR: the normalized, typed form of a BQL
// query handed to the execution engine.  Field order in each struct is the
// order of its JSON encoding.
package ir

import "math"

// MaxDuration is the duration of a query that runs until it is stopped.
const MaxDuration = math.MaxInt64

type Query struct {
	Projection       Projection        `json:"projection"`
	Filter           Expr              `json:"filter"`
	Aggregation      Aggregation       `json:"aggregation"`
	PostAggregations []PostAggregation `json:"post_aggregations"`
	Window           Window            `json:"window"`
	Duration         int64             `json:"duration"`
	TableFunction    *LateralView      `json:"table_function,omitempty"`
}

const (
	PassThrough = "PASS_THROUGH"
	Copy        = "COPY"
	NoCopy      = "NO_COPY"
)

// Projection is PASS_THROUGH (records unchanged), COPY (records plus
// Fields) or NO_COPY (only Fields).
type Projection struct {
	Type   string  `json:"type"`
	Fields []Field `json:"fields"`
}

// Field is a named expression in a projection or computation.
type Field struct {
	Name  string `json:"name"`
	Value Expr   `json:"value"`
}

// LateralView is the LATERAL VIEW EXPLODE table function.
type LateralView struct {
	Outer   bool     `json:"outer"`
	Value   Expr     `json:"value"`
	Aliases []string `json:"aliases"`
}

const (
	UnitTime   = "TIME"
	UnitRecord = "RECORD"

	IncludeAll   = "ALL"
	IncludeFirst = "FIRST"
)

// Window is empty when the query is not windowed.  A window with an Emit
// and no Include is tumbling.
type Window struct {
	Emit    *Emit    `json:"emit,omitempty"`
	Include *Include `json:"include,omitempty"`
}

type Emit struct {
	Type  string `json:"type"`
	Every int64  `json:"every"`
}

type Include struct {
	Type  string `json:"type"`
	Count int64  `json:"count,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// FieldNames returns the names of fs in order.
func FieldNames(fs []Field) []string {
	names := make([]string, 0, len(fs))
	for _, f := range fs {
		names = append(names, f.Name)
	}
	return names
}
