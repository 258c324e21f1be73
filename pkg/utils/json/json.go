// Package json wraps bytedance/sonic so the rest of the tree can swap codecs in one place.
package json

import (
	stdjson "encoding/json"
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// RawMessage is a raw encoded JSON value.
type RawMessage = stdjson.RawMessage

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

func MarshalString(v any) (string, error) {
	return api.MarshalToString(v)
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

func UnmarshalString(data string, v any) error {
	return api.UnmarshalFromString(data, v)
}

func NewEncoder(w io.Writer) sonic.Encoder {
	return api.NewEncoder(w)
}

func NewDecoder(r io.Reader) sonic.Decoder {
	return api.NewDecoder(r)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return api.Valid(data)
}
