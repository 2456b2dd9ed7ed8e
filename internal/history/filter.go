package history

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"roomstatus/internal/tracking"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

const dateOnly = "2006-01-02"

// FilterFromQuery reads the history query parameters:
// roomId, status, from, to, q, limit and offset.
//
// from and to accept RFC 3339 timestamps or plain dates. A plain from starts
// at the beginning of that day (UTC), a plain to covers the whole day.
func FilterFromQuery(q url.Values) (tracking.HistoryFilter, error) {
	f := tracking.HistoryFilter{
		RoomID:     strings.TrimSpace(q.Get("roomId")),
		StatusName: strings.TrimSpace(q.Get("status")),
		FreeText:   strings.TrimSpace(q.Get("q")),
		Limit:      DefaultLimit,
	}

	var err error
	if f.From, err = parseBound("from", q.Get("from"), false); err != nil {
		return f, err
	}
	if f.To, err = parseBound("to", q.Get("to"), true); err != nil {
		return f, err
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxLimit {
			return f, tracking.ValidationError{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(MaxLimit)}
		}
		f.Limit = n
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, tracking.ValidationError{Field: "offset", Message: "must be a non-negative integer"}
		}
		f.Offset = n
	}
	return f, nil
}

func parseBound(field, v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := time.ParseInLocation(dateOnly, v, time.UTC)
	if err != nil {
		return nil, tracking.ValidationError{Field: field, Message: "must be an RFC 3339 timestamp or a YYYY-MM-DD date"}
	}
	t := now.With(d).BeginningOfDay()
	if endOfDay {
		t = now.With(d).EndOfDay()
	}
	return &t, nil
}
