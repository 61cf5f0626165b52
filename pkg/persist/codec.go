// Package persist provides codec-based, crash-safe file persistence for
// small state values.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// maxDecimalLen bounds a decimal state file; int64 needs at most 20 bytes.
const maxDecimalLen = 64

// ErrUnsupportedState is returned when a codec is given a value it cannot encode.
var ErrUnsupportedState = errors.New("unsupported state type")

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	decoder := json.NewDecoder(r)

	err := decoder.Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// DecimalCodec stores a single int64 as decimal text followed by a newline.
// Decode tolerates surrounding whitespace so hand-edited files still load.
type DecimalCodec struct{}

// NewDecimalCodec creates a decimal codec.
func NewDecimalCodec() *DecimalCodec {
	return &DecimalCodec{}
}

// Encode implements Codec.Encode. state must be int64 or *int64.
func (c *DecimalCodec) Encode(w io.Writer, state any) error {
	var value int64

	switch v := state.(type) {
	case int64:
		value = v
	case *int64:
		value = *v
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedState, state)
	}

	_, err := io.WriteString(w, strconv.FormatInt(value, 10)+"\n")
	if err != nil {
		return fmt.Errorf("decimal encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode. state must be *int64.
func (c *DecimalCodec) Decode(r io.Reader, state any) error {
	target, ok := state.(*int64)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedState, state)
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxDecimalLen+1))
	if err != nil {
		return fmt.Errorf("decimal decode: %w", err)
	}

	if len(raw) > maxDecimalLen {
		return fmt.Errorf("decimal decode: content longer than %d bytes", maxDecimalLen)
	}

	value, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return fmt.Errorf("decimal decode: %w", err)
	}

	*target = value

	return nil
}
