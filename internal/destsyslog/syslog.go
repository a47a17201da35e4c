// Package destsyslog implements the system-logger adapter boundary of spec
// section 1/4.5: abstract open/write/close/reconfigure over whatever
// concrete backend the platform provides (syslog(3), os_log, the Windows
// Event Log, ...). Only the syslog(3)-backed boundary is implemented here
// (stdlib log/syslog on unix); other backends are out of scope per the
// spec's own framing ("treat as external collaborators").
package destsyslog

import "sync"

// Destination is the abstract system-logger state machine of section 4.5,
// tracked with a single opened flag: a Destination is either open or not,
// with no separate initialized state.
type Destination struct {
	mu     sync.Mutex
	opened bool
	impl   backend
}

// backend is the concrete-adapter seam; the real one wraps log/syslog on
// unix, and on platforms with no concrete adapter wired in this module a
// stub fails Open and Write with errUnsupported.
type backend interface {
	Open(identity, category string) error
	Write(level uint32, line string) error
	Close() error
}

// New returns a syslog destination using the platform's concrete backend.
func New() *Destination {
	return &Destination{impl: newBackend()}
}

// Open transitions not-init -> open, per section 4.5.
func (d *Destination) Open(identity, category string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.impl.Open(identity, category); err != nil {
		return err
	}
	d.opened = true
	return nil
}

// Reconfigure updates identity/category, which this adapter bakes in at
// open time, so it performs the transparent close->open described in
// section 4.5.
func (d *Destination) Reconfigure(identity, category string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return nil
	}
	_ = d.impl.Close()
	if err := d.impl.Open(identity, category); err != nil {
		d.opened = false
		return err
	}
	return nil
}

// Write emits one formatted line at level.
func (d *Destination) Write(level uint32, line string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return errNotOpen
	}
	return d.impl.Write(level, line)
}

// Close transitions open -> not-init.
func (d *Destination) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return nil
	}
	d.opened = false
	return d.impl.Close()
}

// IsOpen reports the current state-machine position.
func (d *Destination) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}
