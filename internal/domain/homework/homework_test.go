package homework

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestCheckResponse_Valid(t *testing.T) {
	raw := decode(t, `{"homeworks": [{"homework_name":"hw1","status":"approved"}, {"homework_name":"hw0","status":"rejected"}], "current_date": 1663440442}`)

	records, err := CheckResponse(raw)
	require.NoError(t, err)
	require.Len(t, records, 2)

	name, ok := records[0].Name()
	assert.True(t, ok)
	assert.Equal(t, "hw1", name)

	resp, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(1663440442), resp.CurrentDate)

	latest, ok := resp.Latest()
	require.True(t, ok)
	status, _ := latest.Status()
	assert.Equal(t, "approved", status)
}

func TestCheckResponse_EmptyList(t *testing.T) {
	records, err := CheckResponse(decode(t, `{"homeworks": [], "current_date": 1}`))
	require.NoError(t, err)
	assert.Empty(t, records)

	resp, err := DecodeResponse(decode(t, `{"homeworks": [], "current_date": 1}`))
	require.NoError(t, err)
	_, ok := resp.Latest()
	assert.False(t, ok)
}

func TestCheckResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"missing homeworks", decode(t, `{"current_date": 1}`)},
		{"missing current_date", decode(t, `{"homeworks": []}`)},
		{"empty object", decode(t, `{}`)},
		{"top-level list", decode(t, `[{"homeworks": []}]`)},
		{"top-level string", decode(t, `"homeworks"`)},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := CheckResponse(tt.raw)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.NotErrorIs(t, err, ErrTypeMismatch)
		})
	}
}

func TestCheckResponse_TypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"homeworks is object", `{"homeworks": {"homework_name":"hw1"}, "current_date": 1}`},
		{"homeworks is string", `{"homeworks": "hw1", "current_date": 1}`},
		{"homeworks is null", `{"homeworks": null, "current_date": 1}`},
		{"element is not an object", `{"homeworks": ["hw1"], "current_date": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := CheckResponse(decode(t, tt.body))
			assert.Nil(t, records)
			assert.ErrorIs(t, err, ErrTypeMismatch)
		})
	}
}

func TestParseStatus_KnownStatuses(t *testing.T) {
	tests := []struct {
		status  string
		verdict string
	}{
		{"approved", "Работа проверена: ревьюеру всё понравилось. Ура!"},
		{"reviewing", "Работа взята на проверку ревьюером."},
		{"rejected", "Работа проверена: у ревьюера есть замечания."},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			msg, err := ParseStatus(Record{"homework_name": "user__hw_go.zip", "status": tt.status})
			require.NoError(t, err)
			assert.Contains(t, msg, tt.verdict)
			assert.Contains(t, msg, "user__hw_go.zip")
			assert.Equal(t, fmt.Sprintf("Изменился статус проверки работы \"user__hw_go.zip\". %s", tt.verdict), msg)
		})
	}
}

func TestParseStatus_UnknownStatus(t *testing.T) {
	for _, status := range []string{"", "Approved", "done", "pending"} {
		_, err := ParseStatus(Record{"homework_name": "hw1", "status": status})
		assert.ErrorIs(t, err, ErrUnknownStatus, "status %q", status)
	}
}

func TestParseStatus_MissingFields(t *testing.T) {
	tests := []Record{
		{"status": "approved"},
		{"homework_name": "hw1"},
		{"homework_name": nil, "status": "approved"},
		{},
	}

	for _, rec := range tests {
		_, err := ParseStatus(rec)
		assert.ErrorIs(t, err, ErrMissingFields)
	}
}

func TestError_Classification(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError("GetAPIAnswer", ErrRequestFailed, "request failed", cause)

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKnown(err))
	assert.Equal(t, ErrRequestFailed, KindOf(err))
	assert.Equal(t, "GetAPIAnswer: request failed: connection refused", err.Error())

	wrapped := fmt.Errorf("cycle: %w", NewError("ParseStatus", ErrUnknownStatus, "unknown status"))
	assert.True(t, IsKnown(wrapped))
	assert.Equal(t, ErrUnknownStatus, KindOf(wrapped))

	assert.False(t, IsKnown(errors.New("boom")))
	assert.Nil(t, KindOf(errors.New("boom")))
	assert.False(t, IsKnown(NewError("Load", ErrConfigMissing, "missing")))
	assert.Equal(t, ErrConfigMissing, KindOf(NewError("Load", ErrConfigMissing, "missing")))
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusApproved.IsValid())
	assert.True(t, StatusReviewing.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, Status("unknown").IsValid())
}
