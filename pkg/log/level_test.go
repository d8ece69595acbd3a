package log

import (
	"errors"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  error
	}{
		{"trace", Trace, nil},
		{"DEBUG", Debug, nil},
		{" info ", Info, nil},
		{"warning", Warn, nil},
		{"err", Error, nil},
		{"fatal", Fatal, nil},
		{"off", Off, nil},
		{"loud", Info, ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("ParseLevel(%q) error = %v, want %v", tt.in, err, tt.err)
			}
		})
	}
}

func TestLevel_Enables(t *testing.T) {
	if !Info.Enables(Warn) {
		t.Error("Info should enable Warn")
	}
	if Info.Enables(Debug) {
		t.Error("Info should not enable Debug")
	}
	if Off.Enables(Fatal) {
		t.Error("Off should enable nothing")
	}
	if Trace.Enables(Off) {
		t.Error("Off is never an entry level")
	}
}

func TestLevel_UnmarshalText(t *testing.T) {
	var l Level
	if err := l.UnmarshalText([]byte("warn")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if l != Warn {
		t.Errorf("got %v, want WARN", l)
	}
	if err := l.UnmarshalText([]byte("nope")); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevel_String(t *testing.T) {
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("got %q, want UNKNOWN", Level(42).String())
	}
	if Warn.String() != "WARN" {
		t.Errorf("got %q, want WARN", Warn.String())
	}
}
