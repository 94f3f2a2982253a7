// Package client talks to a running BQL compile service.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bullet-db/bql/api"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/goccy/go-json"
	"github.com/segmentio/ksuid"
)

const DefaultURL = "http://localhost:9867"

type Connection struct {
	client        *http.Client
	defaultHeader http.Header
	hostURL       string
}

// NewConnection returns a Connection to the service at hostURL or at
// DefaultURL if hostURL is empty.
func NewConnection(hostURL string) *Connection {
	if hostURL == "" {
		hostURL = DefaultURL
	}
	return &Connection{
		client:        &http.Client{},
		defaultHeader: http.Header{},
		hostURL:       strings.TrimSuffix(hostURL, "/"),
	}
}

func (c *Connection) SetHeader(key, value string) {
	c.defaultHeader.Set(key, value)
}

// ErrorResponse is returned when the service answers with a non-2xx
// status.  Err is the decoded body when the service sent one.
type ErrorResponse struct {
	*http.Response
	Err error
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("status code %d: %v", e.StatusCode, e.Err)
}

func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

// CompileResult is a query compiled by the service.
type CompileResult struct {
	ID     ksuid.KSUID
	Text   string
	Query  *ir.Query
	Cached bool
}

func (c *Connection) Compile(ctx context.Context, query string) (*CompileResult, error) {
	body, err := json.Marshal(api.CompileRequest{Query: query})
	if err != nil {
		return nil, err
	}
	var resp struct {
		ID     ksuid.KSUID     `json:"id"`
		Text   string          `json:"text"`
		Query  json.RawMessage `json:"query"`
		Cached bool            `json:"cached"`
	}
	if err := c.do(ctx, http.MethodPost, "/compile", body, &resp); err != nil {
		return nil, err
	}
	q, err := ir.Unmarshal(resp.Query)
	if err != nil {
		return nil, err
	}
	return &CompileResult{ID: resp.ID, Text: resp.Text, Query: q, Cached: resp.Cached}, nil
}

func (c *Connection) Status(ctx context.Context) (api.StatusResponse, error) {
	var status api.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &status)
	return status, err
}

func (c *Connection) Version(ctx context.Context) (string, error) {
	var v api.VersionResponse
	err := c.do(ctx, http.MethodGet, "/version", nil, &v)
	return v.Version, err
}

func (c *Connection) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.hostURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, v := range c.defaultHeader {
		req.Header[k] = v
	}
	req.Header.Set("Accept", api.MediaTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", api.MediaTypeJSON)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &ErrorResponse{Response: res, Err: parseError(b)}
	}
	return json.Unmarshal(b, out)
}

func parseError(b []byte) error {
	var apiErr api.Error
	if err := json.Unmarshal(b, &apiErr); err != nil || apiErr.Message == "" {
		return errors.New(strings.TrimSpace(string(b)))
	}
	return apiErr
}
