// Package transporters holds log.Transporter implementations.
package transporters

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"forum-harvester/pkg/log"
)

// Stdout writes line-delimited JSON entries.
type Stdout struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStdout writes to os.Stdout.
func NewStdout() *Stdout {
	return &Stdout{writer: os.Stdout}
}

// NewStdoutWithWriter writes to w.
func NewStdoutWithWriter(w io.Writer) *Stdout {
	return &Stdout{writer: w}
}

func (s *Stdout) Name() string { return "stdout" }

func (s *Stdout) Write(entry log.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(data)
	return err
}

func (s *Stdout) Close() error { return nil }
