// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("suite parsed", slog.Int("blocks", n))
//	logger.Error("generate failed", slog.Any("error", err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// # Default Logger
//
// A package-level default logger writes to stderr so that generated source
// emitted on stdout is never interleaved with diagnostics. The default is
// reconfigured via [Config], which the CLI invokes while parsing logging
// flags.
//
// # Context-Aware Logging
//
// Each logging level has both a context-aware and context-unaware variant.
// Context-unaware functions internally call their context-aware counterparts
// using [DefaultContextProvider], which returns [context.TODO] by default.
//
// # Supported Levels
//
// The package supports five log levels: [LevelTrace], [LevelDebug],
// [LevelInfo], [LevelWarn], and [LevelError]. Messages below the configured
// level are discarded. Trace is used by the lang package to narrate parse
// and generate phases.
//
// # Output Formats
//
// Two output formats are supported: [FormatJSON] (default) and
// [FormatText], each with an optional colorized pretty variant.
package log
