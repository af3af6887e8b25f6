package cache

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"
)

// Payload header bytes. The header records how the body was written so a
// reader can decode entries stored before Compress was toggled.
const (
	payloadRaw  byte = 0x00
	payloadGzip byte = 0x01
)

// Encode serializes v with msgpack, gzip-compressing the body when compress
// is set.
func Encode(v any, compress bool) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}

	if !compress {
		out := make([]byte, 0, len(body)+1)
		out = append(out, payloadRaw)
		return append(out, body...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(payloadGzip)
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(body); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode into v.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty cache payload")
	}

	switch data[0] {
	case payloadRaw:
		return msgpack.Unmarshal(data[1:], v)
	case payloadGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data[1:]))
		if err != nil {
			return err
		}
		defer zr.Close()
		body, err := io.ReadAll(zr)
		if err != nil {
			return err
		}
		return msgpack.Unmarshal(body, v)
	default:
		return fmt.Errorf("unknown cache payload header 0x%02x", data[0])
	}
}
