package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// InvalidBodyMessage is the plain-text body returned for a malformed request.
const InvalidBodyMessage = "Invalid Body"

// Payload keys. They are matched exactly; encoding/json would match struct
// tags case-insensitively, so objects are decoded into maps instead.
const (
	keyValues   = "values"
	keyRecordID = "recordId"
	keyData     = "data"
	keyText     = "text"
)

// decodeObject decodes raw as a JSON object keyed by exact field names.
// A JSON null decodes to a nil map without error.
func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ParseRequest decodes a raw skill payload. A body that is empty, not a JSON
// object, or has no "values" array is a malformed request.
func ParseRequest(raw []byte) (*Request, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedRequest)
	}

	fields, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	rawValues, ok := fields[keyValues]
	if !ok || isNull(rawValues) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, ErrMissingValues)
	}

	var values []json.RawMessage
	if err := json.Unmarshal(rawValues, &values); err != nil {
		return nil, fmt.Errorf("%w: values: %v", ErrMalformedRequest, err)
	}
	return &Request{Values: values}, nil
}

// DecodeRecord decodes one entry of Request.Values.
func DecodeRecord(raw json.RawMessage) (RecordInput, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return RecordInput{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	var rec RecordInput
	if id, ok := fields[keyRecordID]; ok {
		rec.RecordID = append(RecordID(nil), id...)
	}
	rec.Data = fields[keyData]
	return rec, nil
}

// DecodeData decodes the data object of a record.
// A missing or non-object data is an error; text must be a string or null.
func (r RecordInput) DecodeData() (RecordData, error) {
	if isNull(r.Data) {
		return RecordData{}, ErrMissingData
	}
	fields, err := decodeObject(r.Data)
	if err != nil {
		return RecordData{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	var d RecordData
	if rawText, ok := fields[keyText]; ok && !isNull(rawText) {
		var text string
		if err := json.Unmarshal(rawText, &text); err != nil {
			return RecordData{}, fmt.Errorf("%w: text: %v", ErrInvalidData, err)
		}
		d.Text = &text
	}
	return d, nil
}

// Text returns data.text, or "" when text is absent or null.
func (r RecordInput) Text() (string, error) {
	d, err := r.DecodeData()
	if err != nil {
		return "", err
	}
	if d.Text == nil {
		return "", nil
	}
	return *d.Text, nil
}
