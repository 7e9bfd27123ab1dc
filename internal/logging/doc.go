// Package logging provides structured logging for taskboard.
//
// Logs are JSON lines produced by log/slog. The CLI writes them to
// debug.log inside the configured log directory, or to stderr when no
// directory is configured. Store backends use the logger as the sink for
// subscription failures, which are never surfaced to the user directly.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/state", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("task created", "task_id", id)
//
// # Context Propagation
//
// Child loggers carry persistent attributes:
//
//	storeLog := logger.WithComponent("store").WithBackend("redis")
//	storeLog.Error("subscription failed", "error", err)
//
// Output:
//
//	{"time":"...","level":"ERROR","msg":"subscription failed","component":"store","backend":"redis","error":"..."}
//
// # Log Rotation
//
//	logger, err := logging.NewLoggerWithRotation(dir, "DEBUG", logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	    Compress:   true,
//	})
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers share
// the parent's writer.
package logging
