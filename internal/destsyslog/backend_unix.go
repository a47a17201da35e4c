//go:build unix

package destsyslog

import (
	"log/syslog"
)

// syslogBackend wraps the stdlib log/syslog writer, the unix-native
// concrete system-logger backend.
type syslogBackend struct {
	w *syslog.Writer
}

func newBackend() backend { return &syslogBackend{} }

func (b *syslogBackend) Open(identity, category string) error {
	tag := identity
	if category != "" {
		tag = identity + "/" + category
	}
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, tag)
	if err != nil {
		return err
	}
	b.w = w
	return nil
}

func (b *syslogBackend) Write(level uint32, line string) error {
	switch {
	case level&0x03 != 0: // EMERG|ALERT
		return b.w.Emerg(line)
	case level&0x04 != 0: // CRIT
		return b.w.Crit(line)
	case level&0x08 != 0: // ERROR
		return b.w.Err(line)
	case level&0x10 != 0: // WARN
		return b.w.Warning(line)
	case level&0x20 != 0: // NOTICE
		return b.w.Notice(line)
	case level&0x40 != 0: // INFO
		return b.w.Info(line)
	default: // DEBUG
		return b.w.Debug(line)
	}
}

func (b *syslogBackend) Close() error {
	if b.w == nil {
		return nil
	}
	return b.w.Close()
}
