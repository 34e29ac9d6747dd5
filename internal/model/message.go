// Package model defines the wire types shared by the transcript engine,
// the rollup pipeline, and the HTTP/CLI consumers.
//
// Field names follow the historical wire contract: renamed fields use
// lowerCamelCase (parentUuid, costUSD, toolUseResult, ...), everything else
// serializes under its snake_case name. Optional fields that are unset are
// omitted from output entirely, never emitted as null.
package model

import "encoding/json"

// TokenUsage holds per-message token counts as reported by the API.
// A nil field means "not reported by this record", which is distinct from zero.
type TokenUsage struct {
	InputTokens              *int64  `json:"input_tokens,omitempty"`
	OutputTokens             *int64  `json:"output_tokens,omitempty"`
	CacheCreationInputTokens *int64  `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     *int64  `json:"cache_read_input_tokens,omitempty"`
	ServiceTier              *string `json:"service_tier,omitempty"`
}

// MessageBody is the nested message envelope inside user/assistant records.
type MessageBody struct {
	Role       string          `json:"role,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
	ID         *string         `json:"id,omitempty"`
	Model      *string         `json:"model,omitempty"`
	StopReason *string         `json:"stop_reason,omitempty"`
	Usage      *TokenUsage     `json:"usage,omitempty"`
}

// RawRecord is the decoded but unnormalized form of one JSONL line.
// The type tag is the only required field; producers have drifted the rest
// of the schema over the years, so every other field is optional and the
// different record types populate disjoint subsets.
type RawRecord struct {
	Type       string  `json:"type"`
	UUID       *string `json:"uuid,omitempty"`
	ParentUUID *string `json:"parentUuid,omitempty"`
	SessionID  *string `json:"sessionId,omitempty"`
	Timestamp  *string `json:"timestamp,omitempty"`

	// summary records
	Summary  *string `json:"summary,omitempty"`
	LeafUUID *string `json:"leafUuid,omitempty"`

	// user/assistant records
	Message       *MessageBody    `json:"message,omitempty"`
	ToolUse       json.RawMessage `json:"toolUse,omitempty"`
	ToolUseResult json.RawMessage `json:"toolUseResult,omitempty"`
	IsSidechain   *bool           `json:"isSidechain,omitempty"`
	Cwd           *string         `json:"cwd,omitempty"`

	// cost and latency metrics
	CostUSD    *float64 `json:"costUSD,omitempty"`
	DurationMs *int64   `json:"durationMs,omitempty"`

	// file-history-snapshot records
	MessageID        *string         `json:"messageId,omitempty"`
	Snapshot         json.RawMessage `json:"snapshot,omitempty"`
	IsSnapshotUpdate *bool           `json:"isSnapshotUpdate,omitempty"`

	// progress records
	Data            json.RawMessage `json:"data,omitempty"`
	ToolUseID       *string         `json:"toolUseID,omitempty"`
	ParentToolUseID *string         `json:"parentToolUseID,omitempty"`

	// queue-operation records
	Operation *string `json:"operation,omitempty"`

	// system records
	Subtype               *string         `json:"subtype,omitempty"`
	Level                 *string         `json:"level,omitempty"`
	HookCount             *int            `json:"hookCount,omitempty"`
	HookInfos             json.RawMessage `json:"hookInfos,omitempty"`
	StopReason            *string         `json:"stopReason,omitempty"`
	PreventedContinuation *bool           `json:"preventedContinuation,omitempty"`
	CompactMetadata       json.RawMessage `json:"compactMetadata,omitempty"`
	MicrocompactMetadata  json.RawMessage `json:"microcompactMetadata,omitempty"`

	// system records place content at the top level instead of inside message
	Content json.RawMessage `json:"content,omitempty"`
}

// Message is the canonical, normalized form of one record. Fields that do not
// apply to a message's type are left unset and omitted on serialization, so
// consumers can tell "not applicable" from "applicable but empty".
type Message struct {
	UUID          string          `json:"uuid"`
	ParentUUID    *string         `json:"parentUuid,omitempty"`
	SessionID     string          `json:"sessionId"`
	Timestamp     string          `json:"timestamp"`
	Type          string          `json:"type"`
	Content       json.RawMessage `json:"content,omitempty"`
	ToolUse       json.RawMessage `json:"toolUse,omitempty"`
	ToolUseResult json.RawMessage `json:"toolUseResult,omitempty"`
	IsSidechain   *bool           `json:"isSidechain,omitempty"`
	Usage         *TokenUsage     `json:"usage,omitempty"`
	Role          *string         `json:"role,omitempty"`
	Model         *string         `json:"model,omitempty"`
	StopReason    *string         `json:"stop_reason,omitempty"`
	CostUSD       *float64        `json:"costUSD,omitempty"`
	DurationMs    *int64          `json:"durationMs,omitempty"`

	// file-history-snapshot fields
	MessageID        *string         `json:"messageId,omitempty"`
	Snapshot         json.RawMessage `json:"snapshot,omitempty"`
	IsSnapshotUpdate *bool           `json:"isSnapshotUpdate,omitempty"`

	// progress fields
	Data            json.RawMessage `json:"data,omitempty"`
	ToolUseID       *string         `json:"toolUseID,omitempty"`
	ParentToolUseID *string         `json:"parentToolUseID,omitempty"`

	// queue-operation fields
	Operation *string `json:"operation,omitempty"`

	// system fields
	Subtype               *string         `json:"subtype,omitempty"`
	Level                 *string         `json:"level,omitempty"`
	HookCount             *int            `json:"hookCount,omitempty"`
	HookInfos             json.RawMessage `json:"hookInfos,omitempty"`
	StopReasonSystem      *string         `json:"stopReasonSystem,omitempty"`
	PreventedContinuation *bool           `json:"preventedContinuation,omitempty"`
	CompactMetadata       json.RawMessage `json:"compactMetadata,omitempty"`
	MicrocompactMetadata  json.RawMessage `json:"microcompactMetadata,omitempty"`
}

// RawSet reports whether an opaque JSON payload carries an actual value.
// An explicit null on input decodes to the literal "null", which counts as unset.
func RawSet(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// HasToolUse reports whether the message carries a tool invocation or a
// tool result payload.
func (m *Message) HasToolUse() bool {
	return RawSet(m.ToolUse) || RawSet(m.ToolUseResult)
}
