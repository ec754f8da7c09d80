package types

import (
	"bytes"
	"strconv"
	"time"
)

// Timestamp is a time.Time that encodes to JSON as integer unix milliseconds,
// the representation used by the browser client and the export format.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to millisecond precision so that a value read
// back from storage compares equal to the one written.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{time.UnixMilli(t.UnixMilli())}
}

// TimestampFromMillis converts a stored unix millisecond value.
func TimestampFromMillis(ms int64) Timestamp {
	return Timestamp{time.UnixMilli(ms)}
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, t.UnixMilli(), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler. JSON null leaves the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		// Exported snapshots are sometimes hand-edited; accept float millis.
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return err
		}
		ms = int64(f)
	}
	*t = TimestampFromMillis(ms)
	return nil
}
