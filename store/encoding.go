package store

import (
	"bytes"
	"encoding/json"
	"io"
)

// Encoder 定义了统一的、无状态的编码器接口
type Encoder[T any] interface {
	Encode(w io.Writer, v T) error
}

// Decoder 定义了统一的、无状态的解码器接口
type Decoder[T any] interface {
	Decode(r io.Reader, v T) error
}

// JSONEncoder writes values in the RPC wire shape so that stored entities
// and RPC results share one representation.
type JSONEncoder[T any] struct{}

func (e JSONEncoder[T]) Encode(w io.Writer, v T) error {
	return json.NewEncoder(w).Encode(v)
}

type JSONDecoder[T any] struct{}

func (d JSONDecoder[T]) Decode(r io.Reader, v T) error {
	return json.NewDecoder(r).Decode(v)
}

func encodeValue[T any](enc Encoder[T], v T) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := enc.Encode(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValue[T any](dec Decoder[*T], data []byte) (*T, error) {
	v := new(T)
	if err := dec.Decode(bytes.NewReader(data), v); err != nil {
		return nil, err
	}
	return v, nil
}
