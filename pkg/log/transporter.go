package log

// Transporter is a log output destination.
type Transporter interface {
	Name() string

	// Write delivers one entry. Calls are never concurrent.
	Write(entry Entry) error

	// Close releases resources. Write is not called afterwards.
	Close() error
}

type discard struct{}

func (discard) Name() string      { return "discard" }
func (discard) Write(Entry) error { return nil }
func (discard) Close() error      { return nil }
