package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// PayloadKind tags the variant carried by a Payload.
type PayloadKind string

const (
	PayloadText PayloadKind = "text"
	PayloadFile PayloadKind = "file"
)

// Payload is the plaintext logical message before encryption.
//
// Text payloads use Body. File payloads use Name and Data, where Data is a
// data URI or a bare base64 string.
type Payload struct {
	Kind PayloadKind
	Body string
	Name string
	Data string
}

// TextPayload returns a text payload carrying body.
func TextPayload(body string) Payload { return Payload{Kind: PayloadText, Body: body} }

// FilePayload returns a file payload carrying name and data.
func FilePayload(name, data string) Payload {
	return Payload{Kind: PayloadFile, Name: name, Data: data}
}

type textWire struct {
	Kind PayloadKind `json:"kind"`
	Body string      `json:"body"`
}

type fileWire struct {
	Kind PayloadKind `json:"kind"`
	Name string      `json:"name"`
	Data string      `json:"data"`
}

// MarshalJSON emits the canonical encoding: fixed field order per kind and
// no HTML escaping. Invalid UTF-8 in any field is rejected rather than
// replaced with U+FFFD.
func (p Payload) MarshalJSON() ([]byte, error) {
	for _, s := range [...]string{p.Body, p.Name, p.Data} {
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("%w: invalid UTF-8", ErrMalformedPayload)
		}
	}
	var v any
	switch p.Kind {
	case PayloadText:
		v = textWire{Kind: p.Kind, Body: p.Body}
	case PayloadFile:
		v = fileWire{Kind: p.Kind, Name: p.Name, Data: p.Data}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, p.Kind)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON accepts exactly the two payload variants. A file payload
// without a name is accepted, matching what browser clients send.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind *PayloadKind `json:"kind"`
		Body *string      `json:"body"`
		Name *string      `json:"name"`
		Data *string      `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw.Kind == nil {
		return fmt.Errorf("%w: missing kind", ErrMalformedPayload)
	}
	switch *raw.Kind {
	case PayloadText:
		if raw.Body == nil {
			return fmt.Errorf("%w: text payload without body", ErrMalformedPayload)
		}
		*p = TextPayload(*raw.Body)
	case PayloadFile:
		if raw.Data == nil {
			return fmt.Errorf("%w: file payload without data", ErrMalformedPayload)
		}
		var name string
		if raw.Name != nil {
			name = *raw.Name
		}
		*p = FilePayload(name, *raw.Data)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, *raw.Kind)
	}
	return nil
}
