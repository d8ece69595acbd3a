package log

import (
	"errors"
	"strings"
)

// Level is the severity of an entry. Higher is more severe.
type Level int32

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal

	// Off disables every level.
	Off
)

var levelNames = map[Level]string{
	Trace: "TRACE",
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Fatal: "FATAL",
	Off:   "OFF",
}

var levelAliases = map[string]Level{
	"WARNING": Warn,
	"ERR":     Error,
	"NONE":    Off,
}

// ErrInvalidLevel is returned when parsing an unknown level string.
var ErrInvalidLevel = errors.New("invalid log level")

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel parses a level name case-insensitively. Unknown names yield
// Info and ErrInvalidLevel.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	if l, ok := levelAliases[name]; ok {
		return l, nil
	}
	return Info, ErrInvalidLevel
}

// UnmarshalText lets levels be decoded from config files and flags.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Enables reports whether a logger at level l emits entries at target.
func (l Level) Enables(target Level) bool {
	return target != Off && target >= l
}
