package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one structured log record.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Caller    string
	RequestID string
	Message   string
	Fields    []Field
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(level Level, msg string) *Entry {
	return &Entry{Timestamp: time.Now(), Level: level, Message: msg}
}

// With adds alternating key/value pairs to the entry.
func (e *Entry) With(keysAndValues ...any) *Entry {
	e.Fields = appendPairs(e.Fields, keysAndValues...)
	return e
}

// Field returns the value stored under key.
func (e Entry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes a flat object: timestamp, level, msg, caller and
// request_id first, then fields in insertion order. Errors are written as
// their message.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(jsonValue(value))
		if err != nil {
			v, _ = json.Marshal(fmt.Sprint(value))
		}
		buf.Write(v)
		return nil
	}

	_ = write("timestamp", e.Timestamp.UTC().Format(time.RFC3339))
	_ = write("level", e.Level.String())
	_ = write("msg", e.Message)
	if e.Caller != "" {
		_ = write("caller", e.Caller)
	}
	if e.RequestID != "" {
		_ = write("request_id", e.RequestID)
	}
	for _, f := range e.Fields {
		switch f.Key {
		case "timestamp", "level", "msg", "caller", "request_id":
			continue
		}
		_ = write(f.Key, f.Value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case error:
		return val.Error()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}
