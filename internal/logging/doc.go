// Package logging builds the run-scoped zap logger used by every command.
//
// A Run owns a log file under the configured log path and a console core on
// stderr. It is created once at the start of a command and closed at the end:
//
//	run, err := logging.New(logging.Options{Tool: "ImportEntityProperties", Path: "logs/"})
//	if err != nil {
//	    return err
//	}
//	defer run.Close()
//	logger := run.Logger()
//
// Nothing in this package is global; components receive the *zap.Logger they log to.
package logging
