package reader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/cory-johannsen/genie/internal/genie/schema"
	"golang.org/x/text/encoding/charmap"
)

// codec decodes one little-endian value of a raw type.
type codec struct {
	size   int
	float  bool
	decode func(b []byte) any
}

var le = binary.LittleEndian

var codecs = map[string]codec{
	"int8_t":   {size: 1, decode: func(b []byte) any { return int64(int8(b[0])) }},
	"uint8_t":  {size: 1, decode: func(b []byte) any { return int64(b[0]) }},
	"int16_t":  {size: 2, decode: func(b []byte) any { return int64(int16(le.Uint16(b))) }},
	"uint16_t": {size: 2, decode: func(b []byte) any { return int64(le.Uint16(b)) }},
	"int32_t":  {size: 4, decode: func(b []byte) any { return int64(int32(le.Uint32(b))) }},
	"uint32_t": {size: 4, decode: func(b []byte) any { return int64(le.Uint32(b)) }},
	"int64_t":  {size: 8, decode: func(b []byte) any { return int64(le.Uint64(b)) }},
	"uint64_t": {size: 8, decode: func(b []byte) any { return le.Uint64(b) }},
	"float":    {size: 4, float: true, decode: func(b []byte) any { return float64(math.Float32frombits(le.Uint32(b))) }},
	"double":   {size: 8, float: true, decode: func(b []byte) any { return math.Float64frombits(le.Uint64(b)) }},
	"char":     {size: 1},
}

// Size returns the encoded width of one value of rawType.
func Size(rawType string) (int, bool) {
	c, ok := codecs[rawType]
	return c.size, ok
}

// decodeSlice decodes n consecutive values.
func decodeSlice(rawType string, c codec, b []byte, n int) (any, error) {
	switch {
	case c.float:
		out := make([]float64, n)
		for i := range out {
			f := c.decode(b[i*c.size:]).(float64)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: element %d", ErrNonFiniteFloat, i)
			}
			out[i] = f
		}
		return out, nil
	case rawType == "uint64_t":
		out := make([]uint64, n)
		for i := range out {
			out[i] = c.decode(b[i*c.size:]).(uint64)
		}
		return out, nil
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = c.decode(b[i*c.size:]).(int64)
	}
	return out, nil
}

// decodeText trims b at the first NUL and converts it to UTF-8.
func decodeText(b []byte, enc schema.Encoding) (string, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if enc == schema.EncodingUTF8 {
		if !utf8.Valid(b) {
			return string(bytes.ToValidUTF8(b, []byte("�"))), nil
		}
		return string(b), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decoding windows-1252 text: %w", err)
	}
	return string(out), nil
}
