// Package logging provides structured logging for trackstore.
//
// The tracking manager never returns errors to its callers; every failure
// it absorbs is reported here instead. Logs are JSON lines produced by
// log/slog, one object per event.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/var/log/trackstore", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Warn("failed to read tracking file", "path", path, "error", err)
//
// Child loggers carry persistent attributes:
//
//	logger.WithComponent("tracking").With("pid", os.Getpid()).Debug("writing tracking file", "path", path)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"writing tracking file","component":"tracking","pid":4242,"path":"/repo/x/_remote.repositories"}
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewLoggerWithWriter] with a
// bytes.Buffer to assert on what was logged.
package logging
