package playcore

import (
	"os"

	"github.com/rs/zerolog"
)

// log is the package-wide structured logger, generalized from the
// teacher package's Printf-only Logger interface into a leveled,
// structured one (see SPEC_FULL.md, Ambient Stack / Logging). Worker
// supervisor events are logged at Warn; the command manager logs a
// failed direct command at Warn with the error, the command name and a
// correlation id.
var log zerolog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetLogger replaces the package-wide logger, e.g. to route playcore's
// output into a host application's own zerolog.Logger.
func SetLogger(logger zerolog.Logger) {
	log = logger
}
