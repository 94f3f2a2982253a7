// Package compiler turns BQL query text into Query IR.  It checks the
// input, parses, analyzes and formats the query, and records what it did
// in logs and metrics.
package compiler

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/parser"
	"github.com/bullet-db/bql/compiler/semantic"
	"github.com/bullet-db/bql/compiler/sfmt"
	"github.com/bullet-db/bql/compiler/srcfiles"
	"github.com/bullet-db/bql/config"
	"github.com/bullet-db/bql/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Compiler is safe for concurrent use.  Each compilation works on its own
// copy of the query and shares only the read-only schema and settings.
type Compiler struct {
	settings config.Settings
	schema   *schema.Schema
	logger   *zap.Logger
	metrics  *metrics
}

// Result is a compiled query.
type Result struct {
	ID    ksuid.KSUID `json:"id"`
	Query *ir.Query   `json:"query"`
	// Text is the canonical form of the query.
	Text string `json:"text"`
}

// New returns a Compiler that checks fields against s, which may be nil.
// Metrics are registered with reg unless it is nil.
func New(settings config.Settings, s *schema.Schema, logger *zap.Logger, reg prometheus.Registerer) (*Compiler, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		settings: settings,
		schema:   s,
		logger:   logger,
		metrics:  newMetrics(reg),
	}, nil
}

// Compile returns the IR for query or the errors found in it.  Errors
// in the query itself are a srcfiles.ErrorList.
func (c *Compiler) Compile(query string) (*Result, error) {
	id := ksuid.New()
	start := time.Now()
	res, err := c.compile(query)
	elapsed := time.Since(start)
	c.metrics.duration.Observe(elapsed.Seconds())
	logger := c.logger.With(zap.Stringer("id", id))
	if err != nil {
		c.metrics.compiles.WithLabelValues("error").Inc()
		logger.Info("compile failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	c.metrics.compiles.WithLabelValues("ok").Inc()
	logger.Debug("compiled", zap.String("query", res.Text), zap.Duration("elapsed", elapsed))
	res.ID = id
	return res, nil
}

func (c *Compiler) compile(query string) (*Result, error) {
	p, err := c.Parse(query)
	if err != nil {
		return nil, err
	}
	q, err := semantic.Analyze(p, c.schema)
	if err != nil {
		return nil, err
	}
	return &Result{Query: q, Text: sfmt.AST(p.Parsed())}, nil
}

// Parse normalizes query to NFC and parses it after checking that it is
// neither empty nor too long.
func (c *Compiler) Parse(query string) (*parser.AST, error) {
	query = norm.NFC.String(query)
	if strings.TrimSpace(query) == "" {
		files := srcfiles.New(query)
		files.AddError("empty query", -1, -1)
		return nil, files.Error()
	}
	if n := utf8.RuneCountInString(query); n > c.settings.MaxQueryLength {
		files := srcfiles.New(query)
		hint := fmt.Sprintf("The query has %d characters but at most %d are allowed.", n, c.settings.MaxQueryLength)
		files.AddErrorWithHint("query is too long", hint, -1, -1)
		return nil, files.Error()
	}
	return parser.ParseQueryWithDecimals(query, c.settings.DecimalLiteral)
}

// Format returns the canonical text of query without analyzing it.
func (c *Compiler) Format(query string) (string, error) {
	p, err := c.Parse(query)
	if err != nil {
		return "", err
	}
	return sfmt.AST(p.Parsed()), nil
}
