package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter writes prefix before every complete line. A partial line is
// held until its newline arrives.
type PrefixWriter struct {
	prefix []byte
	writer io.Writer

	mu      sync.Mutex
	pending []byte
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.pending = append(pw.pending, p...)
	for {
		i := bytes.IndexByte(pw.pending, '\n')
		if i < 0 {
			break
		}
		line := make([]byte, 0, len(pw.prefix)+i+1)
		line = append(line, pw.prefix...)
		line = append(line, pw.pending[:i+1]...)
		if _, err := pw.writer.Write(line); err != nil {
			return 0, err
		}
		pw.pending = pw.pending[i+1:]
	}

	// Reclaim the consumed prefix of the buffer.
	if len(pw.pending) == 0 {
		pw.pending = pw.pending[:0:0]
	}
	return len(p), nil
}
