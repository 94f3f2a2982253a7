package ir

type (
	Aggregation interface {
		aggregationNode()
		// MaxSize is the maximum number of results or nil for no limit.
		MaxSize() *int64
	}
	PostAggregation interface {
		postAggregationNode()
	}
)

// Aggregations

type (
	Raw struct {
		Kind string `json:"kind" unpack:""`
		Size *int64 `json:"size,omitempty"`
	}
	// Group groups records by Fields and computes Operations over each
	// group.  With no Fields, the whole stream is one group.
	Group struct {
		Kind       string           `json:"kind" unpack:""`
		Size       *int64           `json:"size,omitempty"`
		Fields     []GroupField     `json:"fields"`
		Operations []GroupOperation `json:"operations"`
	}
	CountDistinct struct {
		Kind   string   `json:"kind" unpack:""`
		Fields []string `json:"fields"`
		Name   string   `json:"name"`
	}
	// Distribution computes QUANTILE, PMF or CDF over Field.  Points are
	// given by exactly one of NumberOfPoints, a Start/End/Increment range,
	// or explicit Points.
	Distribution struct {
		Kind             string    `json:"kind" unpack:""`
		Size             *int64    `json:"size,omitempty"`
		DistributionType string    `json:"distribution_type"`
		Field            string    `json:"field"`
		NumberOfPoints   *int64    `json:"number_of_points,omitempty"`
		Start            *float64  `json:"start,omitempty"`
		End              *float64  `json:"end,omitempty"`
		Increment        *float64  `json:"increment,omitempty"`
		Points           []float64 `json:"points,omitempty"`
	}
	TopK struct {
		Kind      string       `json:"kind" unpack:""`
		Size      int64        `json:"size"`
		Threshold *int64       `json:"threshold,omitempty"`
		Fields    []GroupField `json:"fields"`
		Name      string       `json:"name"`
	}
)

// GroupField renames the grouped field Field to Name in the output.
type GroupField struct {
	Field string `json:"field"`
	Name  string `json:"name"`
}

const (
	OpCount = "COUNT"
	OpSum   = "SUM"
	OpMin   = "MIN"
	OpMax   = "MAX"
	OpAvg   = "AVG"
)

// GroupOperation is an aggregate over Field, which is empty for COUNT.
type GroupOperation struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Name  string `json:"name"`
}

const (
	Quantile = "QUANTILE"
	PMF      = "PMF"
	CDF      = "CDF"
)

func (*Raw) aggregationNode()           {}
func (*Group) aggregationNode()         {}
func (*CountDistinct) aggregationNode() {}
func (*Distribution) aggregationNode()  {}
func (*TopK) aggregationNode()          {}

func (a *Raw) MaxSize() *int64           { return a.Size }
func (a *Group) MaxSize() *int64         { return a.Size }
func (a *CountDistinct) MaxSize() *int64 { return nil }
func (a *Distribution) MaxSize() *int64  { return a.Size }
func (a *TopK) MaxSize() *int64          { return &a.Size }

// PostAggregations

type (
	Computation struct {
		Kind   string  `json:"kind" unpack:""`
		Fields []Field `json:"fields"`
	}
	OrderBy struct {
		Kind   string      `json:"kind" unpack:""`
		Fields []SortField `json:"fields"`
	}
	// Culling removes fields that were only needed to compute or order
	// the result.
	Culling struct {
		Kind            string   `json:"kind" unpack:""`
		TransientFields []string `json:"transient_fields"`
	}
)

const (
	Asc  = "ASC"
	Desc = "DESC"
)

type SortField struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

func (*Computation) postAggregationNode() {}
func (*OrderBy) postAggregationNode()     {}
func (*Culling) postAggregationNode()     {}
