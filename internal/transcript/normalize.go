package transcript

import "github.com/jovezhong/claude-code-history-viewer/internal/model"

// Normalize maps one raw record onto the canonical message shape.
//
// Resolution rules, in priority order:
//   - content prefers the nested message's content, falling back to the
//     top-level content field (system-message shapes put it there)
//   - usage, role, model and stop_reason come from the nested message only
//   - uuid, sessionId and timestamp copy verbatim; when absent they become
//     empty strings so the file keeps processing (see MissingIdentity)
//   - subtype-specific fields pass through by name, no value transformation
//
// Normalize never fails on a well-formed RawRecord.
func Normalize(rec *model.RawRecord) model.Message {
	msg := model.Message{
		UUID:          deref(rec.UUID),
		ParentUUID:    rec.ParentUUID,
		SessionID:     deref(rec.SessionID),
		Timestamp:     deref(rec.Timestamp),
		Type:          rec.Type,
		ToolUse:       rec.ToolUse,
		ToolUseResult: rec.ToolUseResult,
		IsSidechain:   rec.IsSidechain,
		CostUSD:       rec.CostUSD,
		DurationMs:    rec.DurationMs,

		MessageID:        rec.MessageID,
		Snapshot:         rec.Snapshot,
		IsSnapshotUpdate: rec.IsSnapshotUpdate,

		Data:            rec.Data,
		ToolUseID:       rec.ToolUseID,
		ParentToolUseID: rec.ParentToolUseID,

		Operation: rec.Operation,

		Subtype:               rec.Subtype,
		Level:                 rec.Level,
		HookCount:             rec.HookCount,
		HookInfos:             rec.HookInfos,
		StopReasonSystem:      rec.StopReason,
		PreventedContinuation: rec.PreventedContinuation,
		CompactMetadata:       rec.CompactMetadata,
		MicrocompactMetadata:  rec.MicrocompactMetadata,
	}

	if rec.Message != nil && model.RawSet(rec.Message.Content) {
		msg.Content = rec.Message.Content
	} else if model.RawSet(rec.Content) {
		msg.Content = rec.Content
	}

	if rec.Message != nil {
		if rec.Message.Role != "" {
			role := rec.Message.Role
			msg.Role = &role
		}
		msg.Model = rec.Message.Model
		msg.StopReason = rec.Message.StopReason
		msg.Usage = rec.Message.Usage
	}

	return msg
}

// MissingIdentity reports whether a record lacks any of the identity fields
// that normalization substitutes with empty strings. This is the engine's
// deliberate leniency policy; callers needing strict identity integrity
// post-filter on empty fields.
func MissingIdentity(rec *model.RawRecord) bool {
	return deref(rec.UUID) == "" || deref(rec.SessionID) == "" || deref(rec.Timestamp) == ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
