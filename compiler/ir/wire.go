package ir

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression of an encoded query.  It is the first
// byte of the encoding and the JSON form of the query follows.
type Codec byte

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	}
	return fmt.Sprintf("Codec(%d)", byte(c))
}

func ParseCodec(s string) (Codec, error) {
	for _, c := range []Codec{CodecNone, CodecZstd, CodecLZ4} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown codec %q", s)
}

var ErrTruncated = errors.New("encoded query is empty")

// zstd encoders and decoders are safe for concurrent use with EncodeAll
// and DecodeAll.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Encode serializes q with the given codec.
func Encode(q *Query, codec Codec) ([]byte, error) {
	b, err := Marshal(q)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(codec)}
	switch codec {
	case CodecNone:
		return append(out, b...), nil
	case CodecZstd:
		return zstdEncoder.EncodeAll(b, out), nil
	case CodecLZ4:
		buf := bytes.NewBuffer(out)
		w := lz4.NewWriter(buf)
		if _, err := w.Write(b); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown codec %s", codec)
}

// Decode is the inverse of Encode.
func Decode(b []byte) (*Query, error) {
	if len(b) == 0 {
		return nil, ErrTruncated
	}
	payload := b[1:]
	switch codec := Codec(b[0]); codec {
	case CodecNone:
	case CodecZstd:
		var err error
		if payload, err = zstdDecoder.DecodeAll(payload, nil); err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
	case CodecLZ4:
		var err error
		if payload, err = io.ReadAll(lz4.NewReader(bytes.NewReader(payload))); err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown codec %s", codec)
	}
	return Unmarshal(payload)
}
