package homework

import (
	"encoding/json"
	"fmt"
)

// Response keys of the homework API.
const (
	KeyHomeworks   = "homeworks"
	KeyCurrentDate = "current_date"
	KeyName        = "homework_name"
	KeyStatus      = "status"
)

// Record is a single homework entry as returned by the API.
type Record map[string]any

// Name returns the homework name and whether it is present.
func (r Record) Name() (string, bool) {
	return r.stringField(KeyName)
}

// Status returns the raw review status and whether it is present.
func (r Record) Status() (string, bool) {
	return r.stringField(KeyStatus)
}

func (r Record) stringField(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// PollResponse is a validated homework API answer.
type PollResponse struct {
	// Homeworks are ordered newest first; only the first one is ever examined.
	Homeworks []Record

	// CurrentDate is the server time in unix seconds (0 if not numeric).
	CurrentDate int64
}

// Latest returns the most recent record, if any.
func (p PollResponse) Latest() (Record, bool) {
	if len(p.Homeworks) == 0 {
		return nil, false
	}
	return p.Homeworks[0], true
}

// DecodeResponse validates the generic JSON value of an API answer.
func DecodeResponse(raw any) (PollResponse, error) {
	const op = "CheckResponse"

	body, ok := raw.(map[string]any)
	if !ok {
		return PollResponse{}, NewError(op, ErrMalformedResponse,
			fmt.Sprintf("response is %T, not an object", raw))
	}

	homeworksRaw, hasHomeworks := body[KeyHomeworks]
	currentDateRaw, hasCurrentDate := body[KeyCurrentDate]
	if !hasHomeworks || !hasCurrentDate {
		return PollResponse{}, NewError(op, ErrMalformedResponse,
			fmt.Sprintf("response lacks %q or %q", KeyHomeworks, KeyCurrentDate))
	}

	list, ok := homeworksRaw.([]any)
	if !ok {
		return PollResponse{}, NewError(op, ErrTypeMismatch,
			fmt.Sprintf("%q is %T, not a list", KeyHomeworks, homeworksRaw))
	}

	records := make([]Record, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return PollResponse{}, NewError(op, ErrTypeMismatch,
				fmt.Sprintf("%q[%d] is %T, not an object", KeyHomeworks, i, item))
		}
		records = append(records, Record(obj))
	}

	return PollResponse{
		Homeworks:   records,
		CurrentDate: unixSeconds(currentDateRaw),
	}, nil
}

// CheckResponse validates an API answer and returns its homework list.
// An empty list is a valid answer meaning nothing has been submitted yet.
func CheckResponse(raw any) ([]Record, error) {
	resp, err := DecodeResponse(raw)
	if err != nil {
		return nil, err
	}
	return resp.Homeworks, nil
}

func unixSeconds(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return 0
}
