package transcript

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"
)

// maxLineSize bounds one JSONL line (2 MB). Tool results routinely exceed
// the default bufio.Scanner buffer.
const maxLineSize = 2 * 1024 * 1024

// DefaultPageSize is used when a page request passes limit <= 0.
const DefaultPageSize = 100

// TimestampPolicy controls what happens to records without a timestamp.
type TimestampPolicy int

const (
	// KeepUntimestamped keeps the record with an empty timestamp. It is
	// excluded from time-range and date-bucketed computations.
	KeepUntimestamped TimestampPolicy = iota
	// DropUntimestamped discards the record entirely.
	DropUntimestamped
)

// ErrorPredicate reports whether an opaque tool-result payload signals a
// failed invocation. The payload format is owned by the upstream tool
// system, so detection is pluggable rather than hard-coded.
type ErrorPredicate func(json.RawMessage) bool

// Options configure session reconstruction. The zero value keeps
// untimestamped records and uses DefaultToolError.
type Options struct {
	Timestamps TimestampPolicy
	ToolError  ErrorPredicate
}

// Source identifies one session log handed to the engine by the file-scan
// layer. SessionID is derived from the file location, not from the records.
type Source struct {
	SessionID    string
	ProjectName  string
	FilePath     string
	LastModified time.Time
}

// Result holds everything reconstructed from one session log.
type Result struct {
	Session  model.Session
	Messages []model.Message
	Stats    model.SessionTokenStats

	// SkippedLines are the 1-based positions of lines that failed to decode.
	SkippedLines []int
	// MissingIdentity counts records normalized with an empty uuid,
	// sessionId or timestamp.
	MissingIdentity int
	// ProjectPath is the first working directory seen in the log, if any.
	ProjectPath string
}

// Reconstruct reads one session's lines in order and rebuilds the session
// model, the canonical message sequence, and the token stats.
//
// Messages keep file order; the order is assumed monotonic and is not
// re-validated. Malformed lines are skipped and recorded, never fatal. An
// absent file or zero valid lines is a session with message_count = 0, not
// an error. The only error returned is a read failure from r itself.
func Reconstruct(src Source, r io.Reader, opts Options) (*Result, error) {
	toolError := opts.ToolError
	if toolError == nil {
		toolError = DefaultToolError
	}

	res := &Result{
		Session: model.Session{
			SessionID:   src.SessionID,
			FilePath:    src.FilePath,
			ProjectName: src.ProjectName,
		},
	}
	if !src.LastModified.IsZero() {
		res.Session.LastModified = src.LastModified.UTC().Format(time.RFC3339)
	}

	sessionVotes := make(map[string]int)
	actualID := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		rec, err := DecodeLine(line, lineNo)
		if err != nil {
			res.SkippedLines = append(res.SkippedLines, lineNo)
			continue
		}

		if MissingIdentity(rec) {
			res.MissingIdentity++
		}

		msg := Normalize(rec)
		if msg.Timestamp == "" && opts.Timestamps == DropUntimestamped {
			continue
		}

		if rec.Type == TypeSummary && rec.Summary != nil {
			// Last summary checkpoint wins; files may contain several.
			s := *rec.Summary
			res.Session.Summary = &s
		}
		if rec.Cwd != nil && res.ProjectPath == "" {
			res.ProjectPath = *rec.Cwd
		}

		if msg.SessionID != "" {
			sessionVotes[msg.SessionID]++
			if sessionVotes[msg.SessionID] > sessionVotes[actualID] {
				actualID = msg.SessionID
			}
		}

		if msg.Timestamp != "" {
			if res.Session.FirstMessageTime == "" {
				res.Session.FirstMessageTime = msg.Timestamp
			}
			res.Session.LastMessageTime = msg.Timestamp
		}

		if msg.HasToolUse() {
			res.Session.HasToolUse = true
		}
		if !res.Session.HasErrors {
			if model.RawSet(msg.ToolUseResult) && toolError(msg.ToolUseResult) {
				res.Session.HasErrors = true
			} else if contentHasError(msg.Content) {
				res.Session.HasErrors = true
			}
		}

		res.Messages = append(res.Messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	res.Session.ActualSessionID = actualID
	res.Session.MessageCount = len(res.Messages)
	res.Stats = SessionTokens(res.Session, res.Messages)

	return res, nil
}

// Page returns one window of a session's messages in file order.
// next_offset on the final page equals the total count.
func Page(messages []model.Message, offset, limit int) model.MessagePage {
	total := len(messages)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset > total {
		offset = total
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return model.MessagePage{
		Messages:   messages[offset:end],
		TotalCount: total,
		HasMore:    end < total,
		NextOffset: end,
	}
}

// Index builds a uuid -> message lookup for parent/child chain traversal.
// parentUuid is a non-owning back-reference, so an index beats embedded
// pointers: O(1) lookup and no cyclic ownership. Records with an empty uuid
// are not indexed; duplicates resolve last-wins.
func Index(messages []model.Message) map[string]*model.Message {
	idx := make(map[string]*model.Message, len(messages))
	for i := range messages {
		if messages[i].UUID != "" {
			idx[messages[i].UUID] = &messages[i]
		}
	}
	return idx
}

// DefaultToolError is the stock error detector for opaque tool-result
// payloads: an object with is_error true or a non-null error key, or a
// string payload starting with "Error".
func DefaultToolError(raw json.RawMessage) bool {
	if !model.RawSet(raw) {
		return false
	}

	var obj struct {
		IsError *bool           `json:"is_error"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.IsError != nil && *obj.IsError {
			return true
		}
		if model.RawSet(obj.Error) {
			return true
		}
		return false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.HasPrefix(s, "Error")
	}
	return false
}

// contentHasError scans a block-list content payload for tool_result blocks
// flagged as errors.
func contentHasError(raw json.RawMessage) bool {
	if !model.RawSet(raw) {
		return false
	}
	var blocks []struct {
		Type    string `json:"type"`
		IsError bool   `json:"is_error"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return false
	}
	for _, b := range blocks {
		if b.Type == "tool_result" && b.IsError {
			return true
		}
	}
	return false
}
