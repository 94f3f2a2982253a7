package service

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/bullet-db/bql/api"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/sfmt"
	"github.com/bullet-db/bql/compiler/srcfiles"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type handlerFunc func(*Service, http.ResponseWriter, *http.Request) error

func handler(s *Service, f handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := f(s, w, r); err != nil {
			s.writeError(w, r, err)
		}
	})
}

// statusError carries the HTTP status and error kind of a failed request.
type statusError struct {
	status int
	kind   string
	err    error
}

func (e *statusError) Error() string {
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func errBadRequest(format string, args ...any) error {
	return &statusError{http.StatusBadRequest, "invalid", fmt.Errorf(format, args...)}
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	var (
		list     srcfiles.ErrorList
		se       *statusError
		tooLarge *http.MaxBytesError
		mimeErr  *api.ErrUnsupportedMimeType
	)
	switch {
	case errors.As(err, &list):
		status, kind = http.StatusBadRequest, "invalid"
	case errors.As(err, &tooLarge):
		status, kind = http.StatusRequestEntityTooLarge, "too_large"
	case errors.As(err, &mimeErr):
		status, kind = http.StatusNotAcceptable, "unsupported_media"
	case errors.As(err, &se):
		status, kind = se.status, se.kind
	}
	if status == http.StatusInternalServerError {
		s.logger.Warn("request failed",
			zap.String("request_id", api.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, api.Error{
		Type:              "Error",
		Kind:              kind,
		Message:           err.Error(),
		CompilationErrors: list,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", api.MediaTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func handleCompile(s *Service, w http.ResponseWriter, r *http.Request) error {
	format, err := api.MediaTypeToFormat(r.Header.Get("Accept"), "json")
	if err != nil {
		return err
	}
	query, err := readQuery(w, r, int64(s.conf.MaxBodySize))
	if err != nil {
		return err
	}
	res, cached, err := s.compile(query)
	if err != nil {
		return err
	}
	switch format {
	case "ir":
		b, err := ir.Encode(res.Query, ir.CodecZstd)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", api.MediaTypeIR)
		_, err = w.Write(b)
		return err
	case "text":
		w.Header().Set("Content-Type", api.MediaTypeText)
		_, err := io.WriteString(w, sfmt.IR(res.Query)+"\n")
		return err
	}
	writeJSON(w, http.StatusOK, api.CompileResponse{
		ID:     res.ID,
		Text:   res.Text,
		Query:  res.Query,
		Cached: cached,
	})
	return nil
}

// readQuery reads the query from a text/plain body or from the query
// field of a JSON body.
func readQuery(w http.ResponseWriter, r *http.Request, limit int64) (string, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()
	typ := api.MediaTypeJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		if typ, _, err = mime.ParseMediaType(ct); err != nil {
			return "", errBadRequest("invalid Content-Type: %s", ct)
		}
	}
	switch typ {
	case api.MediaTypeText:
		b, err := io.ReadAll(body)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case api.MediaTypeJSON:
		var req api.CompileRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", err
			}
			return "", errBadRequest("invalid request body: %v", err)
		}
		return req.Query, nil
	}
	return "", &statusError{http.StatusUnsupportedMediaType, "unsupported_media", fmt.Errorf("unsupported Content-Type: %s", typ)}
}

func handleStatus(s *Service, w http.ResponseWriter, r *http.Request) error {
	status := api.StatusResponse{
		Version:  s.version,
		Rate:     s.rate.Rate(),
		Compiles: s.compiles.Load(),
	}
	if s.cache != nil {
		status.Cached = s.cache.Len()
	}
	writeJSON(w, http.StatusOK, status)
	return nil
}

func handleVersion(s *Service, w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, api.VersionResponse{Version: s.version})
	return nil
}

func handleNotFound(s *Service, w http.ResponseWriter, r *http.Request) error {
	return &statusError{http.StatusNotFound, "not_found", fmt.Errorf("no such endpoint: %s %s", r.Method, r.URL.Path)}
}
