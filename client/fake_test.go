package client

import (
	"errors"
	"sync"
	"time"
	"unsafe"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
)

// Test doubles for the backend capability interface.

type fakeStream struct{ name string }

func (s *fakeStream) StreamHandle() unsafe.Pointer { return unsafe.Pointer(s) }

type fakeEvent struct {
	recorded  int
	synced    int
	destroyed int
	recordErr error
	syncErr   error
}

func (e *fakeEvent) Record(stream hipblaslt.Stream) error {
	if e.recordErr != nil {
		return e.recordErr
	}
	e.recorded++
	return nil
}

func (e *fakeEvent) Synchronize() error {
	if e.syncErr != nil {
		return e.syncErr
	}
	e.synced++
	return nil
}

func (e *fakeEvent) Destroy() error {
	if e.destroyed > 0 {
		return errors.New("fake: event destroyed twice")
	}
	e.destroyed++
	return nil
}

type fakeDevice struct {
	mu sync.Mutex

	syncCalls int
	syncErr   error

	elapsed    time.Duration
	elapsedErr error

	createErr error
	events    []*fakeEvent
}

func (d *fakeDevice) Synchronize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.syncErr != nil {
		return d.syncErr
	}
	d.syncCalls++
	return nil
}

func (d *fakeDevice) CreateEvent() (hipblaslt.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return nil, d.createErr
	}
	ev := &fakeEvent{}
	d.events = append(d.events, ev)
	return ev, nil
}

func (d *fakeDevice) Elapsed(start, stop hipblaslt.Event) (time.Duration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.elapsedErr != nil {
		return 0, d.elapsedErr
	}
	return d.elapsed, nil
}

func (d *fakeDevice) CopyAsync(dst, src unsafe.Pointer, bytes int64,
	kind hipblaslt.CopyKind, stream hipblaslt.Stream) error {
	return nil
}

// recordingReporter captures metrics in report order.
type recordingReporter struct {
	keys   []string
	values []float64
	err    error
}

func (r *recordingReporter) Report(key string, value float64) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
	return nil
}

func (r *recordingReporter) value(key string) (float64, bool) {
	for i := len(r.keys) - 1; i >= 0; i-- {
		if r.keys[i] == key {
			return r.values[i], true
		}
	}
	return 0, false
}
