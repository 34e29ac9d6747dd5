package transcript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLineMinimal(t *testing.T) {
	rec, err := DecodeLine([]byte(`{"type":"user"}`), 1)
	require.NoError(t, err)
	assert.Equal(t, TypeUser, rec.Type)
	assert.Nil(t, rec.UUID)
	assert.Nil(t, rec.Message)
}

func TestDecodeLineFullRecord(t *testing.T) {
	line := []byte(`{
		"type":"assistant",
		"uuid":"u1",
		"parentUuid":"u0",
		"sessionId":"s1",
		"timestamp":"2025-03-01T10:00:00Z",
		"isSidechain":true,
		"costUSD":0.42,
		"durationMs":1200,
		"message":{
			"role":"assistant",
			"model":"some-model",
			"stop_reason":"end_turn",
			"content":[{"type":"text","text":"hi"}],
			"usage":{"input_tokens":10,"output_tokens":5}
		}
	}`)

	rec, err := DecodeLine(line, 1)
	require.NoError(t, err)
	assert.Equal(t, TypeAssistant, rec.Type)
	require.NotNil(t, rec.UUID)
	assert.Equal(t, "u1", *rec.UUID)
	require.NotNil(t, rec.ParentUUID)
	assert.Equal(t, "u0", *rec.ParentUUID)
	require.NotNil(t, rec.IsSidechain)
	assert.True(t, *rec.IsSidechain)
	require.NotNil(t, rec.CostUSD)
	assert.InDelta(t, 0.42, *rec.CostUSD, 1e-9)

	require.NotNil(t, rec.Message)
	assert.Equal(t, "assistant", rec.Message.Role)
	require.NotNil(t, rec.Message.Usage)
	require.NotNil(t, rec.Message.Usage.InputTokens)
	assert.EqualValues(t, 10, *rec.Message.Usage.InputTokens)
}

func TestDecodeLineMissingType(t *testing.T) {
	_, err := DecodeLine([]byte(`{"uuid":"u1"}`), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTypeTag)

	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, 3, decErr.Line)
}

func TestDecodeLineInvalidJSON(t *testing.T) {
	_, err := DecodeLine([]byte(`{not json`), 7)
	require.Error(t, err)

	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, 7, decErr.Line)
}

func TestDecodeLineWrongFieldTypeDegrades(t *testing.T) {
	// A field of the wrong type degrades to unset; the record survives as
	// long as the type tag decodes.
	rec, err := DecodeLine([]byte(`{"type":"user","uuid":42,"sessionId":"s1"}`), 1)
	require.NoError(t, err)
	assert.Equal(t, TypeUser, rec.Type)
	assert.Nil(t, rec.UUID)
	require.NotNil(t, rec.SessionID)
	assert.Equal(t, "s1", *rec.SessionID)
}

func TestDecodeLineUnknownType(t *testing.T) {
	// Unknown type tags pass through; the engine treats the tag as open-ended.
	rec, err := DecodeLine([]byte(`{"type":"future-thing","uuid":"u1"}`), 1)
	require.NoError(t, err)
	assert.Equal(t, "future-thing", rec.Type)
}

func FuzzDecodeLine(f *testing.F) {
	f.Add([]byte(`{"type":"user","uuid":"u1"}`))
	f.Add([]byte(`{"type":"summary","summary":"s","leafUuid":"u9"}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`not json at all`))
	f.Add([]byte(`{"type":123}`))

	f.Fuzz(func(t *testing.T, line []byte) {
		rec, err := DecodeLine(line, 1)
		if err == nil && rec.Type == "" {
			t.Fatal("decoded record without a type tag")
		}
	})
}
