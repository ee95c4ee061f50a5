package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultOutputLimit is the buffered size that triggers a flush.
	DefaultOutputLimit = 4096
	// DefaultOutputPeriod is how long output may wait in the buffer.
	DefaultOutputPeriod = 50 * time.Millisecond
)

// ErrOutputClosed is returned by Write after Close.
var ErrOutputClosed = zerr.New("element output is closed")

// OutputBuffer batches the output of one element build for the renderer.
// Flushes triggered by size end at the last complete line, so that lines
// reach the renderer whole while a build streams. The timer and Close flush
// everything. It is safe for concurrent use.
type OutputBuffer struct {
	limit  int
	period time.Duration
	emit   func([]byte)

	mu      sync.Mutex
	buf     bytes.Buffer
	timer   *time.Timer
	written int64
	closed  bool
}

// NewOutputBuffer returns a buffer handing batches to emit. Non-positive
// limits select the defaults.
func NewOutputBuffer(limit int, period time.Duration, emit func([]byte)) *OutputBuffer {
	if limit <= 0 {
		limit = DefaultOutputLimit
	}
	if period <= 0 {
		period = DefaultOutputPeriod
	}
	return &OutputBuffer{limit: limit, period: period, emit: emit}
}

// Write buffers p. The first write into an empty buffer arms the timer.
func (o *OutputBuffer) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, ErrOutputClosed
	}
	if o.buf.Len() == 0 && len(p) > 0 {
		o.arm()
	}
	n, _ := o.buf.Write(p)
	o.written += int64(n)

	if o.buf.Len() >= o.limit {
		o.flushLines()
	}
	return n, nil
}

// Written returns the number of bytes written so far.
func (o *OutputBuffer) Written() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.written
}

// Close flushes the remaining output. Later writes fail.
func (o *OutputBuffer) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	if o.timer != nil {
		o.timer.Stop()
	}
	o.flushAll()
	return nil
}

func (o *OutputBuffer) arm() {
	if o.timer == nil {
		o.timer = time.AfterFunc(o.period, o.expire)
		return
	}
	o.timer.Reset(o.period)
}

func (o *OutputBuffer) expire() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushAll()
}

// flushLines emits up to the last newline, or everything when the buffer
// holds no complete line. Must be called with mu held.
func (o *OutputBuffer) flushLines() {
	data := o.buf.Bytes()
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		o.flushAll()
		return
	}
	o.send(o.buf.Next(end + 1))
	if o.buf.Len() > 0 {
		o.arm()
	}
}

// flushAll must be called with mu held. The callback runs under the lock so
// batches are delivered in order.
func (o *OutputBuffer) flushAll() {
	if o.buf.Len() == 0 {
		return
	}
	o.send(o.buf.Bytes())
	o.buf.Reset()
}

func (o *OutputBuffer) send(data []byte) {
	if o.emit != nil {
		o.emit(bytes.Clone(data))
	}
}
