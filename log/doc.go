// Package log provides the leveled, printf-style logging used throughout dailyagent.
//
// Two implementations are available: DefaultLogger on top of the standard
// library logger, and GologLogger wrapping github.com/kataras/golog, which is
// what the CLI and the HTTP server install. Library code logs through the
// package-level functions (Debug, Info, Warn, Error), so a single
// SetDefaultLogger call redirects everything.
//
// # Log Levels
//
//   - LogLevelDebug: payload sizes, prompts, routing decisions
//   - LogLevelInfo: node activations and run outcomes
//   - LogLevelWarn: recoverable problems such as a failed checkpoint save
//   - LogLevelError: failures that end a run
//   - LogLevelNone: disables all logging output
//
// ParseLevel maps the log.level configuration value to a LogLevel.
//
// # Example Usage
//
//	level, err := log.ParseLevel(cfg.Log.Level)
//	if err != nil {
//	    return err
//	}
//	log.SetDefaultLogger(log.NewConsoleLogger(os.Stderr, level))
//	log.Info("starting run %s", runID)
package log
