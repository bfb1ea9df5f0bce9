package control

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Codec turns a Command into a broker payload and back.
type Codec interface {
	// Name is the mqtt.payload_format value selecting this codec.
	Name() string
	Encode(cmd Command) ([]byte, error)
	Decode(data []byte, cmd *Command) error
}

// CodecFor returns the codec for a payload format name ("json" or "cbor").
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSONCodec{}, nil
	case "cbor":
		return NewCBORCodec()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// JSONCodec encodes commands as JSON objects.
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return "json" }

// Encode implements Codec.
func (JSONCodec) Encode(cmd Command) ([]byte, error) {
	b, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encoding command as json: %w", err)
	}
	return b, nil
}

// Decode implements Codec.
func (JSONCodec) Decode(data []byte, cmd *Command) error {
	if err := json.Unmarshal(data, cmd); err != nil {
		return fmt.Errorf("decoding json command: %w", err)
	}
	return nil
}

// CBORCodec encodes commands as canonical CBOR maps with integer keys and
// IssuedAt as integer Unix seconds.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec builds the encoder and decoder modes.
func NewCBORCodec() (*CBORCodec, error) {
	enc, err := cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeUnix,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("building cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("building cbor decoder: %w", err)
	}
	return &CBORCodec{enc: enc, dec: dec}, nil
}

// Name implements Codec.
func (*CBORCodec) Name() string { return "cbor" }

// Encode implements Codec.
func (c *CBORCodec) Encode(cmd Command) ([]byte, error) {
	b, err := c.enc.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encoding command as cbor: %w", err)
	}
	return b, nil
}

// Decode implements Codec.
func (c *CBORCodec) Decode(data []byte, cmd *Command) error {
	if err := c.dec.Unmarshal(data, cmd); err != nil {
		return fmt.Errorf("decoding cbor command: %w", err)
	}
	return nil
}
