package discovery

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// LineReader reads lines in the background so a blocked read on a terminal
// can still be abandoned when ctx is canceled.
type LineReader struct {
	lines chan string
	errc  chan error
	done  chan struct{}
	once  sync.Once
}

// NewLineReader starts reading r
func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{
		lines: make(chan string),
		errc:  make(chan error, 1),
		done:  make(chan struct{}),
	}
	go lr.scan(r)
	return lr
}

func (lr *LineReader) scan(r io.Reader) {
	defer close(lr.lines)
	s := bufio.NewScanner(r)
	for s.Scan() {
		select {
		case lr.lines <- s.Text():
		case <-lr.done:
			return
		}
	}
	if err := s.Err(); err != nil {
		lr.errc <- err
	}
}

// ReadLine returns the next line, io.EOF at end of input, or ctx's error.
func (lr *LineReader) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lr.lines:
		if ok {
			return line, nil
		}
		select {
		case err := <-lr.errc:
			return "", err
		default:
			return "", io.EOF
		}
	}
}

// Close stops the background reader once its pending read returns
func (lr *LineReader) Close() {
	lr.once.Do(func() { close(lr.done) })
}
