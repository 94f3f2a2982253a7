package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bullet-db/bql/api"
	"github.com/bullet-db/bql/api/client"
	"github.com/bullet-db/bql/compiler"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/config"
	"github.com/bullet-db/bql/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnection(t *testing.T) *client.Connection {
	c, err := compiler.New(config.DefaultSettings(), nil, nil, nil)
	require.NoError(t, err)
	s, err := service.New(config.DefaultService(), c, nil, nil, "v0.1.0")
	require.NoError(t, err)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return client.NewConnection(srv.URL)
}

func TestConnection(t *testing.T) {
	ctx := context.Background()
	conn := newConnection(t)

	v, err := conn.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0", v)

	res, err := conn.Compile(ctx, "select a from stream() limit 2")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM STREAM() LIMIT 2", res.Text)
	assert.False(t, res.ID.IsNil())
	assert.Equal(t, ir.NoCopy, res.Query.Projection.Type)
	assert.False(t, res.Cached)

	res, err = conn.Compile(ctx, "select a from stream() limit 2")
	require.NoError(t, err)
	assert.True(t, res.Cached)

	status, err := conn.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Compiles)
	assert.Equal(t, 1, status.Cached)
}

func TestConnectionError(t *testing.T) {
	conn := newConnection(t)
	_, err := conn.Compile(context.Background(), "")
	require.Error(t, err)
	var resp *client.ErrorResponse
	require.True(t, errors.As(err, &resp))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var apiErr api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid", apiErr.Kind)
	assert.Equal(t, "empty query", apiErr.Message)
	require.Len(t, apiErr.CompilationErrors, 1)
	assert.Equal(t, -1, apiErr.CompilationErrors[0].Pos)
}
