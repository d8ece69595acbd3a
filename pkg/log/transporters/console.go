package transporters

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"forum-harvester/pkg/log"

	"github.com/fatih/color"
)

var levelColors = map[log.Level]*color.Color{
	log.Trace: color.New(color.FgHiBlack),
	log.Debug: color.New(color.FgCyan),
	log.Info:  color.New(color.FgGreen),
	log.Warn:  color.New(color.FgYellow),
	log.Error: color.New(color.FgRed),
	log.Fatal: color.New(color.FgHiRed, color.Bold),
}

var keyColor = color.New(color.FgHiBlack)

// Console writes human-readable lines for terminal use:
//
//	15:04:05 INFO  page extracted page=2 posts=20
//
// Colors follow fatih/color, which disables them when the writer is not a
// terminal or NO_COLOR is set.
type Console struct {
	mu     sync.Mutex
	writer io.Writer
	caller bool
}

// NewConsole writes to os.Stderr so command output on stdout stays clean.
func NewConsole() *Console {
	return &Console{writer: color.Error}
}

// NewConsoleWithWriter writes to w. showCaller appends file:line.
func NewConsoleWithWriter(w io.Writer, showCaller bool) *Console {
	return &Console{writer: w, caller: showCaller}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Write(entry log.Entry) error {
	var b strings.Builder

	b.WriteString(entry.Timestamp.Local().Format(time.TimeOnly))
	b.WriteByte(' ')
	level := fmt.Sprintf("%-5s", entry.Level.String())
	if lc, ok := levelColors[entry.Level]; ok {
		level = lc.Sprint(level)
	}
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if entry.RequestID != "" {
		writePair(&b, "request_id", entry.RequestID)
	}
	for _, f := range entry.Fields {
		writePair(&b, f.Key, f.Value)
	}
	if c.caller && entry.Caller != "" {
		writePair(&b, "caller", entry.Caller)
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.writer, b.String())
	return err
}

func writePair(b *strings.Builder, key string, value any) {
	b.WriteByte(' ')
	b.WriteString(keyColor.Sprint(key + "="))
	s := fmt.Sprint(value)
	if strings.ContainsAny(s, " \t\"=") || s == "" {
		s = fmt.Sprintf("%q", s)
	}
	b.WriteString(s)
}

func (c *Console) Close() error { return nil }
