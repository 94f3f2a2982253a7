package api_test

import (
	"testing"

	"github.com/bullet-db/bql/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaTypeToFormat(t *testing.T) {
	cases := map[string]string{
		"":                                "json",
		"*/*":                             "json",
		"application/json":                "json",
		"application/json; charset=utf-8": "json",
		"application/x-bql-ir":            "ir",
		" text/plain ":                    "text",
	}
	for in, expected := range cases {
		format, err := api.MediaTypeToFormat(in, "json")
		require.NoError(t, err, in)
		assert.Equal(t, expected, format, in)
	}
	_, err := api.MediaTypeToFormat("text/csv", "json")
	assert.EqualError(t, err, "unsupported MIME type: text/csv")
}

func TestFormatToMediaType(t *testing.T) {
	for _, format := range []string{"json", "ir", "text"} {
		typ, err := api.FormatToMediaType(format)
		require.NoError(t, err)
		back, err := api.MediaTypeToFormat(typ, "")
		require.NoError(t, err)
		assert.Equal(t, format, back)
	}
	_, err := api.FormatToMediaType("csv")
	assert.EqualError(t, err, "unknown format type: csv")
}
