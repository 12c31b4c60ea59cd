// Package log provides a leveled, structured logging interface based on
// [log/slog], with configurable output format, time formatting, caller
// information, and colorized pretty printing.
//
// Loggers are immutable values configured at creation time with functional
// options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithCaller(true))
//
// Attributes can be attached to a logger to be included in all subsequent
// log messages using the [Logger.With] method:
//
//	logger = logger.With(slog.String("block", name))
//
// Each level has a context-aware and a context-unaware variant. The
// context-unaware functions call their counterparts with the context from
// [DefaultContextProvider], which returns [context.TODO] by default.
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level are
// discarded. The zero value Logger discards everything.
//
// Package-level functions ([Info], [Debug], and friends) log through a
// process-wide default logger, reconfigurable with [Config].
package log
