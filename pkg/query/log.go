package query

import "log"

// SetLogger attaches logger to db; the engine calls it for a handful of
// diagnostic lines (redefinition cascades, cycles) and nothing else. A
// nil logger (the default) makes these calls no-ops — logging here is
// optional instrumentation, never load-bearing.
func (db *Database) SetLogger(logger *log.Logger) {
	db.logger = logger
}

// logf writes a diagnostic line if a logger is attached.
func (db *Database) logf(format string, args ...any) {
	if db.logger == nil {
		return
	}
	db.logger.Printf(format, args...)
}
