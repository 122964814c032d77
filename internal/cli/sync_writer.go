package cli

import (
	"io"
	"sync"
)

// syncWriter serialises writes from the goroutines of one run. Writers that
// share a mutex never interleave within a single Write.
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// syncWriters wraps out and errOut behind one lock; they are often the same
// terminal or buffer.
func syncWriters(out, errOut io.Writer) (io.Writer, io.Writer) {
	mu := new(sync.Mutex)
	return &syncWriter{mu: mu, w: out}, &syncWriter{mu: mu, w: errOut}
}
