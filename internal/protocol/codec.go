package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrMalformedMessage   = errors.New("malformed message value")
)

// Codec names.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Encoder writes framed messages to a stream.
type Encoder interface {
	Encode(msg Message) error
}

// Decoder reads framed messages from a stream.
type Decoder interface {
	Decode() (Message, error)
}

// Codec creates encoders and decoders bound to a stream.
type Codec interface {
	Name() string
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
}

// NewCodec returns the codec registered under name.
func NewCodec(name string) (Codec, error) {
	switch name {
	case CodecJSON, "":
		return JSONCodec{}, nil
	case CodecCBOR:
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// newMessage returns a pointer to a zero value of the concrete type for t.
func newMessage(t MessageType) (Message, any, error) {
	switch t {
	case TypeChangeCandidate:
		m := &ChangeCandidate{}
		return m, m, nil
	case TypeSelectCandidate:
		m := &SelectCandidate{}
		return m, m, nil
	case TypeSkip:
		m := &Skip{}
		return m, m, nil
	case TypeRetrain:
		m := &Retrain{}
		return m, m, nil
	case TypeCandidates:
		m := &Candidates{}
		return m, m, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, t)
	}
}

// deref turns the decoded pointer back into the value type callers switch on.
func deref(m Message) Message {
	return reflect.ValueOf(m).Elem().Interface().(Message)
}

// JSONCodec frames messages as newline-delimited JSON objects of the form
// {"type": ..., "value": ...}.
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return CodecJSON }

type jsonEnvelope struct {
	Type  MessageType     `json:"type"`
	Value json.RawMessage `json:"value"`
}

type jsonEncoder struct {
	enc *json.Encoder
}

func (e jsonEncoder) Encode(msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", msg.Type(), err)
	}
	return e.enc.Encode(jsonEnvelope{Type: msg.Type(), Value: value})
}

type jsonDecoder struct {
	dec *json.Decoder
}

func (d jsonDecoder) Decode() (Message, error) {
	var env jsonEnvelope
	if err := d.dec.Decode(&env); err != nil {
		return nil, err
	}
	msg, target, err := newMessage(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Value) > 0 && string(env.Value) != "null" {
		if err := json.Unmarshal(env.Value, target); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, env.Type, err)
		}
	}
	return deref(msg), nil
}

// NewEncoder implements Codec.
func (JSONCodec) NewEncoder(w io.Writer) Encoder {
	return jsonEncoder{enc: json.NewEncoder(w)}
}

// NewDecoder implements Codec.
func (JSONCodec) NewDecoder(r io.Reader) Decoder {
	return jsonDecoder{dec: json.NewDecoder(r)}
}

// cborEncMode uses Core Deterministic Encoding so the same message always
// produces the same bytes.
var cborEncMode cbor.EncMode

// cborDecMode decodes untyped maps (entry metadata) as map[string]any.
var cborDecMode cbor.DecMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("protocol: CBOR encoder initialization failed: " + err.Error())
	}
	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("protocol: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORCodec frames messages as a stream of self-delimiting CBOR items.
type CBORCodec struct{}

// Name implements Codec.
func (CBORCodec) Name() string { return CodecCBOR }

type cborEnvelope struct {
	Type  MessageType     `cbor:"type"`
	Value cbor.RawMessage `cbor:"value"`
}

type cborEncoder struct {
	enc *cbor.Encoder
}

func (e cborEncoder) Encode(msg Message) error {
	value, err := cborEncMode.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", msg.Type(), err)
	}
	return e.enc.Encode(cborEnvelope{Type: msg.Type(), Value: value})
}

type cborDecoder struct {
	dec *cbor.Decoder
}

func (d cborDecoder) Decode() (Message, error) {
	var env cborEnvelope
	if err := d.dec.Decode(&env); err != nil {
		return nil, err
	}
	msg, target, err := newMessage(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Value) > 0 {
		if err := cborDecMode.Unmarshal(env.Value, target); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, env.Type, err)
		}
	}
	return deref(msg), nil
}

// NewEncoder implements Codec.
func (CBORCodec) NewEncoder(w io.Writer) Encoder {
	return cborEncoder{enc: cborEncMode.NewEncoder(w)}
}

// NewDecoder implements Codec.
func (CBORCodec) NewDecoder(r io.Reader) Decoder {
	return cborDecoder{dec: cborDecMode.NewDecoder(r)}
}
