package hipblaslt

import (
	"time"
	"unsafe"
)

// CopyKind selects the direction of an asynchronous buffer copy.
type CopyKind int

const (
	CopyHostToDevice CopyKind = iota
	CopyDeviceToHost
	CopyDeviceToDevice
	CopyHostToHost
)

// Stream is an opaque handle to a device execution stream. The backend
// defines the concrete type; the harness only threads it through.
type Stream interface {
	StreamHandle() unsafe.Pointer
}

// Event is a device-side timing marker. Record enqueues the marker on a
// stream; Synchronize blocks until the marker has completed; Destroy
// releases it. An Event must not be reused after Destroy.
type Event interface {
	Record(stream Stream) error
	Synchronize() error
	Destroy() error
}

// Device is the backend capability interface the benchmarking core
// consumes. All operations may fail; callers propagate failures
// unmodified, as fatal to the current session.
type Device interface {
	// Synchronize blocks until all work submitted to the device has
	// completed.
	Synchronize() error

	// CreateEvent creates a timing marker.
	CreateEvent() (Event, error)

	// Elapsed reports the device time between two recorded markers.
	Elapsed(start, stop Event) (time.Duration, error)

	// CopyAsync enqueues an asynchronous copy of bytes from src to dst
	// on the given stream.
	CopyAsync(dst, src unsafe.Pointer, bytes int64, kind CopyKind, stream Stream) error
}
