package semantic

import (
	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/schema"
)

// aggregation builds the one aggregation the query type calls for.
func (p *Processed) aggregation() ir.Aggregation {
	switch p.Type {
	case Select, SelectAll:
		return &ir.Raw{Kind: "Raw", Size: p.Limit}
	case SelectDistinct:
		return &ir.Group{Kind: "Group", Size: p.Limit, Fields: p.groupFields()}
	case Group:
		return &ir.Group{
			Kind:       "Group",
			Size:       p.Limit,
			Fields:     p.groupFields(),
			Operations: p.groupOperations(),
		}
	case CountDistinct:
		var fields []string
		for _, k := range p.Keys {
			fields = append(fields, k.Field)
		}
		return &ir.CountDistinct{Kind: "CountDistinct", Fields: fields, Name: p.aggItem.Name}
	case Distribution:
		return p.distribution(ast.Unparen(p.aggItem.Expr).(*ast.DistributionExpr))
	case TopK:
		top := &ir.TopK{Kind: "TopK", Threshold: p.Threshold, Fields: p.groupFields()}
		if p.SpecialK {
			top.Size = *p.Limit
			top.Name = p.aggregate("COUNT(*)").Name
		} else {
			top.Size = ast.Unparen(p.aggItem.Expr).(*ast.TopKExpr).Size
			top.Name = p.aggItem.Name
		}
		return top
	}
	panic(p.Type)
}

func (p *Processed) groupFields() []ir.GroupField {
	var fields []ir.GroupField
	for _, k := range p.Keys {
		fields = append(fields, ir.GroupField{Field: k.Field, Name: k.Name})
	}
	return fields
}

func (p *Processed) groupOperations() []ir.GroupOperation {
	var ops []ir.GroupOperation
	for _, agg := range p.Aggregates {
		ops = append(ops, ir.GroupOperation{Type: agg.Op, Field: agg.Field, Name: agg.Name})
	}
	return ops
}

func (p *Processed) distribution(e *ast.DistributionExpr) *ir.Distribution {
	d := &ir.Distribution{
		Kind:             "Distribution",
		Size:             p.Limit,
		DistributionType: distributionType(e.Op),
		Field:            p.Keys[0].Field,
	}
	switch e.Mode {
	case "LINEAR":
		n := e.NumPoints
		d.NumberOfPoints = &n
	case "REGION":
		start, end, increment := e.RangeStart, e.RangeEnd, e.Increment
		d.Start, d.End, d.Increment = &start, &end, &increment
	case "MANUAL":
		d.Points = append([]float64(nil), e.Points...)
	}
	return d
}

func distributionType(op string) string {
	switch op {
	case "QUANTILE":
		return ir.Quantile
	case "FREQ":
		return ir.PMF
	case "CUMFREQ":
		return ir.CDF
	}
	panic(op)
}

// Names of the fields in each record a distribution produces.
const (
	QuantileField    = "Quantile"
	ValueField       = "Value"
	ProbabilityField = "Probability"
	CountField       = "Count"
	RangeField       = "Range"
)

func distributionOutputs(typ string) []schema.Field {
	if typ == ir.Quantile {
		return []schema.Field{
			{Name: QuantileField, Type: bql.Double},
			{Name: ValueField, Type: bql.Double},
		}
	}
	return []schema.Field{
		{Name: ProbabilityField, Type: bql.Double},
		{Name: CountField, Type: bql.Double},
		{Name: RangeField, Type: bql.String},
	}
}
