package api

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

const (
	MediaTypeAny  = "*/*"
	MediaTypeJSON = "application/json"
	// MediaTypeIR is the compressed wire form of the IR.
	MediaTypeIR   = "application/x-bql-ir"
	MediaTypeText = "text/plain"
)

type ErrUnsupportedMimeType struct {
	Type string
}

func (m *ErrUnsupportedMimeType) Error() string {
	return fmt.Sprintf("unsupported MIME type: %s", m.Type)
}

// MediaTypeToFormat returns the response format for the media type value
// s.  If s is MediaTypeAny or undefined the default format dflt will be
// returned.
func MediaTypeToFormat(s string, dflt string) (string, error) {
	if s = strings.TrimSpace(s); s == "" {
		return dflt, nil
	}
	typ, _, err := mime.ParseMediaType(s)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", err
	}
	switch typ {
	case MediaTypeAny, "":
		return dflt, nil
	case MediaTypeJSON:
		return "json", nil
	case MediaTypeIR:
		return "ir", nil
	case MediaTypeText:
		return "text", nil
	}
	return "", &ErrUnsupportedMimeType{typ}
}

func FormatToMediaType(format string) (string, error) {
	switch format {
	case "json":
		return MediaTypeJSON, nil
	case "ir":
		return MediaTypeIR, nil
	case "text":
		return MediaTypeText, nil
	default:
		return "", fmt.Errorf("unknown format type: %s", format)
	}
}
