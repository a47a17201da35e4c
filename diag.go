package sir

import (
	"os"

	"github.com/rs/zerolog"
)

// diag is the library's private channel for reporting on its own operation
// ("self-diagnostic" messages from sections 4.2/4.3: a no-op update_file, a
// rotation that did not complete, a plugin cleanup() that
// returned false). It never participates in the public, printf-formatted
// dispatch path and is never subject to the squelch detector — those rules
// apply only to user messages.
//
// This is the home the teacher's own dependency (rs/zerolog) gets in this
// port: the library logging about itself, structured, separately from the
// user-facing destinations it manages.
var diag = zerolog.New(os.Stderr).With().Timestamp().Str("component", "sir").Logger()

// diagNoop records that an update call changed nothing and was refused as a
// no-op but still reported success, per section 4.2.
func diagNoop(op string, id uint32) {
	diag.Warn().Str("op", op).Uint32("id", id).Msg("update was a no-op")
}

// diagRotateFailed records that a rotation did not complete: no free
// archive name was found, the rename failed, or the original path could not
// be reopened after the rename.
func diagRotateFailed(path string) {
	diag.Warn().Str("path", path).Msg("rotation did not complete")
}

// diagPluginCleanupFailed records that a plugin's cleanup() returned false.
func diagPluginCleanupFailed(path string, id uint32) {
	diag.Warn().Str("path", path).Uint32("id", id).Msg("plugin cleanup reported failure")
}
