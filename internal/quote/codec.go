package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExportFilename is the name of the file written by WriteFile.
const ExportFilename = "quotes.json"

// Decode parses a JSON array of quotes.
//
// Malformed JSON yields a *DecodeError. Well-formed JSON that is not an array
// yields a *FormatError. Array elements are decoded verbatim: missing fields
// stay empty and nothing is trimmed or validated. An element that is not an
// object cannot be represented as a Quote and yields a *DecodeError.
func Decode(data []byte) ([]Quote, error) {
	if !json.Valid(data) {
		var probe any
		err := json.Unmarshal(data, &probe)
		if err == nil {
			err = fmt.Errorf("invalid JSON")
		}
		return nil, &DecodeError{Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &FormatError{Reason: "expected an array of quote objects"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}

	quotes := make([]Quote, 0, len(raw))
	for i, elem := range raw {
		var q Quote
		if err := json.Unmarshal(elem, &q); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("element %d: %w", i, err)}
		}
		quotes = append(quotes, q)
	}

	return quotes, nil
}

// Encode serializes quotes as a compact JSON array. A nil slice encodes as [].
func Encode(quotes []Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}
	data, err := json.Marshal(quotes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quotes: %w", err)
	}
	return data, nil
}

// EncodePretty serializes quotes as a 2-space indented JSON array.
func EncodePretty(quotes []Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quotes: %w", err)
	}
	return data, nil
}

// ReadFile reads and decodes a quotes file.
func ReadFile(path string) ([]Quote, error) {
	// #nosec G304 - path supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quotes file %s: %w", path, err)
	}
	return Decode(data)
}

// WriteFile writes quotes to dir/quotes.json in pretty form and returns the path.
func WriteFile(dir string, quotes []Quote) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := EncodePretty(quotes)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ExportFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write quotes file %s: %w", path, err)
	}

	return path, nil
}
