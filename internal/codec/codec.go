// Package codec makes free-form panel text safe to carry in a form field.
//
// Text is encoded as UTF-8 and then with the standard 64-symbol alphabet
// (A-Z a-z 0-9 + /) padded with '='. Decoding discards every character
// outside that alphabet first, so whitespace or line breaks injected by a
// transport layer do not corrupt the payload.
package codec

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Alphabet is the set of symbols Encode emits, padding last.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

const padding = '='

var (
	// ErrMalformed is returned when the filtered input cannot form whole bytes.
	ErrMalformed = errors.New("codec: malformed encoded text")

	// ErrInvalidUTF8 is returned when decoded bytes are not UTF-8 text.
	ErrInvalidUTF8 = errors.New("codec: decoded bytes are not valid UTF-8")
)

// Encode returns the transport-safe form of text.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode reverses Encode. Characters outside the alphabet are ignored.
// The filtered text is read quartet by quartet; a pad symbol ends its own
// quartet only, so padded encodings joined end to end decode in full.
func Decode(encoded string) (string, error) {
	clean := Filter(encoded)

	var raw []byte
	for len(clean) > 0 {
		n := min(4, len(clean))
		quartet := clean[:n]
		clean = clean[n:]
		if i := strings.IndexByte(quartet, padding); i >= 0 {
			quartet = quartet[:i]
		}
		if len(quartet) == 1 {
			return "", ErrMalformed
		}

		var err error
		raw, err = base64.RawStdEncoding.AppendDecode(raw, []byte(quartet))
		if err != nil {
			return "", errors.Join(ErrMalformed, err)
		}
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}

// Filter drops every character that is not part of Alphabet.
func Filter(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlphabet(c) {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isAlphabet(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '/', c == padding:
		return true
	default:
		return false
	}
}

// EncodeFields encodes the named fields of values in place.
// Missing fields are skipped. The returned map holds the plain text of
// every field that was encoded, keyed by name, so callers can restore it.
func EncodeFields(values url.Values, names ...string) map[string]string {
	plain := make(map[string]string, len(names))
	for _, name := range names {
		v, ok := values[name]
		if !ok || len(v) == 0 {
			continue
		}
		plain[name] = v[0]
		values.Set(name, Encode(v[0]))
	}
	return plain
}

// DecodeFields decodes the named fields of values in place.
// The first field that fails to decode aborts the operation.
func DecodeFields(values url.Values, names ...string) error {
	for _, name := range names {
		v, ok := values[name]
		if !ok || len(v) == 0 {
			continue
		}
		text, err := Decode(v[0])
		if err != nil {
			return &FieldError{Field: name, Err: err}
		}
		values.Set(name, text)
	}
	return nil
}

// FieldError reports which form field failed to decode.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return "codec: field " + e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
