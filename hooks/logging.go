package hooks

import "log"

// LoggingHooks provides built-in logging hooks for observability.
type LoggingHooks struct {
	logger *log.Logger
}

// NewLoggingHooks creates logging hooks with the provided logger.
func NewLoggingHooks(logger *log.Logger) *LoggingHooks {
	return &LoggingHooks{logger: logger}
}

// DefaultLoggingHooks creates logging hooks with the default logger.
func DefaultLoggingHooks() *LoggingHooks {
	return &LoggingHooks{logger: log.Default()}
}

// Register attaches all logging hooks to the registry.
func (h *LoggingHooks) Register(r *Registry) {
	r.OnFetchStart(h.FetchStart)
	r.OnFetchDone(h.FetchDone)
	r.OnStateChange(h.StateChange)
}

// FetchStart logs the beginning of a fetch.
func (h *LoggingHooks) FetchStart(identity string, seq uint64) {
	h.logger.Printf("[linkpg] fetch %d started for %s", seq, identity)
}

// FetchDone logs the completion of a fetch.
func (h *LoggingHooks) FetchDone(identity string, seq uint64, count int, err error) {
	if err != nil {
		h.logger.Printf("[linkpg] fetch %d for %s failed: %v", seq, identity, err)
		return
	}
	h.logger.Printf("[linkpg] fetch %d for %s returned %d rows", seq, identity, count)
}

// StateChange logs synchronizer state transitions.
func (h *LoggingHooks) StateChange(identity, from, to string) {
	h.logger.Printf("[linkpg] synchronizer for %s: %s -> %s", identity, from, to)
}
