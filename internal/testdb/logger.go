package testdb

import (
	"sync"

	"github.com/Gobusters/ectologger"
)

// LogRecorder keeps every message logged through its Logger.
type LogRecorder struct {
	mu       sync.Mutex
	messages []ectologger.EctoLogMessage
}

func (r *LogRecorder) Logger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.messages = append(r.messages, msg)
	})
}

func (r *LogRecorder) Messages(level string) []ectologger.EctoLogMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ectologger.EctoLogMessage
	for _, m := range r.messages {
		if level == "" || m.Level == level {
			out = append(out, m)
		}
	}
	return out
}

// Contains reports whether any message at level has exactly this text.
func (r *LogRecorder) Contains(level, text string) bool {
	for _, m := range r.Messages(level) {
		if m.Message == text {
			return true
		}
	}
	return false
}
