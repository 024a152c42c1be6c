// Package vtlog provides the component-tagged structured logger used across
// the agent core. It mirrors the teacher's logger.Component/field convention
// but delegates the actual encoding to zerolog instead of a hand-rolled
// JSON writer.
package vtlog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	base   = zerolog.New(os.Stderr).With().Timestamp().Logger()
	level  = zerolog.InfoLevel
)

func init() {
	zerolog.SetGlobalLevel(level)
}

// SetLevel sets the minimum level logged process-wide.
func SetLevel(l zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	zerolog.SetGlobalLevel(l)
}

// SetOutput redirects the base logger's writer (e.g. to a log file, as the
// teacher's EnableFileLogging/DisableFileLogging pair does).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).With().Timestamp().Logger()
}

// For returns a logger tagged with the given component name, the equivalent
// of the teacher's logger.InfoCF(component, message, fields) call sites.
func For(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}
