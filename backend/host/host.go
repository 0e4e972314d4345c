// Package host implements the backend capability interface against the
// host clock, with no GPU involved. It plays the role of a serial
// device mode: copies are synchronous memmoves, events record wall
// time, synchronization is a no-op. Useful for tests and for exercising
// the benchmark loop on machines without a device.
package host

import (
	"errors"
	"sync/atomic"
	"time"
	"unsafe"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
)

// Stream is the host backend's trivial stream: all work is immediate,
// so a stream is only an identity.
type Stream struct {
	id int64
}

func (s *Stream) StreamHandle() unsafe.Pointer { return unsafe.Pointer(s) }

// Event records the host clock at Record time.
type Event struct {
	at        time.Time
	recorded  bool
	destroyed atomic.Bool
}

func (e *Event) Record(stream hipblaslt.Stream) error {
	if e.destroyed.Load() {
		return errors.New("host: record on destroyed event")
	}
	e.at = time.Now()
	e.recorded = true
	return nil
}

// Synchronize returns immediately; host work is complete as soon as it
// is issued.
func (e *Event) Synchronize() error {
	if e.destroyed.Load() {
		return errors.New("host: synchronize on destroyed event")
	}
	return nil
}

func (e *Event) Destroy() error {
	if !e.destroyed.CompareAndSwap(false, true) {
		return errors.New("host: event destroyed twice")
	}
	return nil
}

// Device is the host-clock device.
type Device struct {
	streamSeq int64
}

var _ hipblaslt.Device = (*Device)(nil)

func NewDevice() *Device {
	return &Device{}
}

// NewStream returns a fresh stream handle.
func (d *Device) NewStream() *Stream {
	return &Stream{id: atomic.AddInt64(&d.streamSeq, 1)}
}

func (d *Device) Synchronize() error { return nil }

func (d *Device) CreateEvent() (hipblaslt.Event, error) {
	return &Event{}, nil
}

func (d *Device) Elapsed(start, stop hipblaslt.Event) (time.Duration, error) {
	s, ok := start.(*Event)
	if !ok {
		return 0, errors.New("host: start event is not a host event")
	}
	e, ok := stop.(*Event)
	if !ok {
		return 0, errors.New("host: stop event is not a host event")
	}
	if !s.recorded || !e.recorded {
		return 0, errors.New("host: elapsed time of unrecorded event")
	}
	return e.at.Sub(s.at), nil
}

// CopyAsync performs the copy immediately; the host has no async queue.
func (d *Device) CopyAsync(dst, src unsafe.Pointer, bytes int64,
	kind hipblaslt.CopyKind, stream hipblaslt.Stream) error {

	if bytes < 0 {
		return errors.New("host: negative copy length")
	}
	if bytes == 0 {
		return nil
	}
	if dst == nil || src == nil {
		return errors.New("host: nil copy pointer")
	}
	copy(unsafe.Slice((*byte)(dst), bytes), unsafe.Slice((*byte)(src), bytes))
	return nil
}
