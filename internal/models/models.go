package models

import (
	"bytes"
	"encoding/json"
)

// Request is the top-level skill payload: {"values": [...]}.
// Each entry is kept raw so a malformed entry only fails its own record.
type Request struct {
	Values []json.RawMessage
}

// RecordInput is a single entry of Request.Values. Build it with DecodeRecord,
// which matches the recordId and data keys exactly.
type RecordInput struct {
	RecordID RecordID        `json:"recordId"`
	Data     json.RawMessage `json:"data"`
}

// RecordData is the schema of RecordInput.Data, decoded by RecordInput.DecodeData.
// Text defaults to "" when absent or null.
type RecordData struct {
	Text *string `json:"text"`
}

// Response mirrors Request: one RecordOutput per input entry, in input order.
type Response struct {
	Values []RecordOutput `json:"values"`
}

// RecordOutput is either a success (Data set) or a failure (Errors set), never both.
// Build it with Success or Failure.
type RecordOutput struct {
	RecordID RecordID        `json:"recordId"`
	Data     *OutputData     `json:"data,omitempty"`
	Errors   []RecordMessage `json:"errors,omitempty"`
}

// OutputData is the data object of a successful record.
type OutputData struct {
	Category string `json:"category"`
}

// RecordMessage is one entry of a failed record's errors array.
type RecordMessage struct {
	Message string `json:"message"`
}

// RecordID is the caller's record identifier, kept as the raw JSON value it arrived as.
// It is never interpreted; an absent id is written back as null.
type RecordID json.RawMessage

// NewRecordID returns the RecordID for a string identifier.
func NewRecordID(s string) RecordID {
	b, _ := json.Marshal(s)
	return RecordID(b)
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	if isNull(id) {
		return []byte("null"), nil
	}
	return []byte(id), nil
}

func (id *RecordID) UnmarshalJSON(b []byte) error {
	*id = append((*id)[:0], b...)
	return nil
}

// IsZero reports whether the caller did not supply an id (absent or null).
func (id RecordID) IsZero() bool {
	return isNull(id)
}

// String renders the id for logs: string ids unquoted, anything else as raw JSON.
func (id RecordID) String() string {
	if isNull(id) {
		return ""
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return string(id)
}

// Success builds the success variant of a record result.
func Success(id RecordID, category string) RecordOutput {
	return RecordOutput{RecordID: id, Data: &OutputData{Category: category}}
}

// Failure builds the failure variant of a record result from err.
func Failure(id RecordID, err error) RecordOutput {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return RecordOutput{RecordID: id, Errors: []RecordMessage{{Message: msg}}}
}

// Failed reports whether the output is the failure variant.
func (o RecordOutput) Failed() bool {
	return len(o.Errors) > 0
}

func isNull(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
