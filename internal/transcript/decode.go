// Package transcript turns Claude Code JSONL session logs into canonical
// messages, session metadata, and per-session token statistics. It is pure:
// the same input lines always produce the same output, and all file I/O
// belongs to the source layer.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"
)

// Record types written by current producers. Unknown tags still decode and
// pass through normalization as opaque messages, preserving forward
// compatibility with schema evolution.
const (
	TypeSummary        = "summary"
	TypeUser           = "user"
	TypeAssistant      = "assistant"
	TypeSystem         = "system"
	TypeSnapshot       = "file-history-snapshot"
	TypeProgress       = "progress"
	TypeQueueOperation = "queue-operation"
)

// ErrMissingTypeTag marks a syntactically valid line with no usable type
// discriminator.
var ErrMissingTypeTag = errors.New("missing type tag")

// DecodeError reports one line that could not be decoded. It is scoped to
// that line: the caller skips and counts it, the file keeps processing.
type DecodeError struct {
	Line int // 1-based position in the file
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeLine parses one JSONL line into a RawRecord.
//
// Every field beyond the type tag is optional: a type-mismatched optional
// field degrades to unset rather than failing the line, as long as the type
// tag itself decoded. Invalid JSON or a missing type tag yields a DecodeError
// carrying the line position.
func DecodeLine(line []byte, lineNo int) (*model.RawRecord, error) {
	var rec model.RawRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, &DecodeError{Line: lineNo, Err: err}
		}
		// Unmarshal fills the remaining fields past a type mismatch, so the
		// record survives with that one field unset.
	}
	if rec.Type == "" {
		return nil, &DecodeError{Line: lineNo, Err: ErrMissingTypeTag}
	}
	return &rec, nil
}
