package prefs

import (
	"github.com/rs/zerolog"
)

// toneFrequencyHz matches the UI confirmation beep the pages play.
const toneFrequencyHz = 800

// LogSounder is the server-side stand-in for the browser tone: it emits
// a log event instead of audio.
type LogSounder struct {
	Logger zerolog.Logger
}

func (s LogSounder) Beep() {
	s.Logger.Debug().Int("freq_hz", toneFrequencyHz).Msg("settings confirmation tone")
}
