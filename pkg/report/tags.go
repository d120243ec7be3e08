package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedTags is returned when a serialized tag set cannot be decoded
var ErrMalformedTags = errors.New("malformed tag set")

// EncodeTags serializes a tag set as a JSON object with sorted keys.
// A nil or empty map encodes as "{}".
func EncodeTags(tags map[string]string) (string, error) {
	if len(tags) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("error encoding tags: %w", err)
	}
	return string(b), nil
}

// DecodeTags parses a tag set written by EncodeTags.
// An empty field decodes to an empty map; anything other than a JSON object
// of string values is rejected.
func DecodeTags(s string) (map[string]string, error) {
	tags := make(map[string]string)
	trimmed := bytes.TrimSpace([]byte(s))
	if len(trimmed) == 0 {
		return tags, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected JSON object", ErrMalformedTags)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTags, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedTags)
	}
	return tags, nil
}
