// Package log provides a concurrency-safe structured logger built on
// [log/slog].
//
// Loggers are configured at creation time with functional options and are
// safe to copy. The zero [Logger] discards everything, so library code can
// hold one unconditionally:
//
//	var logger log.Logger // no-op until configured
//	logger.TraceContext(ctx, "parse start")
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below slog's Debug and is used by
// the formula evaluator for per-node dispatch messages.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText]. With [WithPretty] enabled, text
// output is colorized with lipgloss styles; JSON output is never colorized
// so that it stays machine readable.
//
// # Default Logger
//
// Package-level functions ([Info], [DebugContext], ...) write through a
// process-wide default logger that [Config] reconfigures in place.
package log
