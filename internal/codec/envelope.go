// Package codec encodes the JSON envelopes exchanged with browser frames.
package codec

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dkeye/FrameBridge/internal/domain"
)

const (
	TypePing    = "ping"
	TypePong    = "pong"
	TypePost    = "post"
	TypeMessage = "message"
	TypeWhoAmI  = "whoami"
	TypeRename  = "rename"
	TypeError   = "error"
)

var ErrMissingType = errors.New("envelope type missing")

// Envelope is the single frame shape on the wire.
// Data is kept raw so relayed payloads are forwarded byte for byte.
type Envelope struct {
	Type   string           `json:"type"`
	To     domain.ContextID `json:"to,omitempty"`
	Origin domain.Origin    `json:"origin,omitempty"`
	Name   string           `json:"name,omitempty"`
	Data   json.RawMessage  `json:"data,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func Decode(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}
	return &env, nil
}

func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return b, nil
}

// Message wraps an outbound payload as a "message" envelope.
func Message(origin domain.Origin, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode message data: %w", err)
	}
	return Encode(Envelope{Type: TypeMessage, Origin: origin, Data: raw})
}

func ErrorFrame(reason string) []byte {
	b, _ := Encode(Envelope{Type: TypeError, Error: reason})
	return b
}
