// Package api declares the payloads exchanged with the BQL compile
// service.
package api

import (
	"context"

	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/srcfiles"
	"github.com/segmentio/ksuid"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey{}); v != nil {
		return v.(string)
	}
	return ""
}

// Error is the body of every unsuccessful response.  CompilationErrors
// holds the positioned errors of a query that failed to compile.
type Error struct {
	Type              string             `json:"type"`
	Kind              string             `json:"kind"`
	Message           string             `json:"error"`
	CompilationErrors srcfiles.ErrorList `json:"compilation_errors,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

type VersionResponse struct {
	Version string `json:"version"`
}

type CompileRequest struct {
	Query string `json:"query"`
}

type CompileResponse struct {
	ID    ksuid.KSUID `json:"id"`
	Text  string      `json:"text"`
	Query *ir.Query   `json:"query"`
	// Cached is set when the result was served from the cache.
	Cached bool `json:"cached,omitempty"`
}

type StatusResponse struct {
	Version string `json:"version"`
	// Rate is the number of compilations in the last minute.
	Rate     int64 `json:"rate"`
	Compiles int64 `json:"compiles"`
	Cached   int   `json:"cached"`
}
