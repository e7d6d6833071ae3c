package repository

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// StoredSignature is one user-created signature image.
// Ids are assigned by the caller and are not checked for uniqueness.
type StoredSignature struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Mime          string `json:"mime"`
	Bytes         Blob   `json:"bytes"`
	NaturalWidth  uint32 `json:"naturalW"`
	NaturalHeight uint32 `json:"naturalH"`
}

var signatureKeys = []string{"id", "name", "mime", "bytes", "naturalW", "naturalH"}

// UnmarshalJSON requires every field to be present and non-null. Empty strings are accepted.
func (s *StoredSignature) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	if fields == nil {
		return errors.New("signature: expected an object, got null")
	}
	for _, key := range signatureKeys {
		raw, ok := fields[key]
		if !ok {
			return fmt.Errorf("signature: missing field %q", key)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return fmt.Errorf("signature: field %q is null", key)
		}
	}

	type plain StoredSignature
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	*s = StoredSignature(decoded)
	return nil
}

// Blob is binary data encoded in JSON as an array of byte values.
// Decoding also accepts a base64 string.
type Blob []byte

// MarshalJSON encodes the blob as a JSON array of numbers.
func (b Blob) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(b)*4+2)
	buf = append(buf, '[')
	for i, v := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(v), 10)
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON decodes either a JSON array of byte values or a base64 string.
func (b *Blob) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("blob: empty input")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("blob: %w", err)
		}
		*b = decoded
		return nil
	case '[':
		var values []uint16
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return fmt.Errorf("blob: %w", err)
		}
		out := make([]byte, len(values))
		for i, v := range values {
			if v > 0xff {
				return fmt.Errorf("blob: value %d at index %d is out of byte range", v, i)
			}
			out[i] = byte(v)
		}
		*b = out
		return nil
	default:
		return fmt.Errorf("blob: expected array or base64 string, got %s", trimmed)
	}
}
