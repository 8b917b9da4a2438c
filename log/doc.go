// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports multiple output formats ([FormatJSON] and [FormatLogfmt]) and
// the standard severity levels. Use [NewHandler] to create a handler
// directly, or use [Config] with CLI flag integration via
// [github.com/spf13/pflag] and shell completion support via
// [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Recorder] is an [io.Writer] that buffers whole log lines in memory so
// diagnostic traces (catalog resolutions, assembly events) can be replayed
// into command output after the fact:
//
//	rec := log.NewRecorder()
//	handler := log.NewHandler(io.MultiWriter(os.Stderr, rec), slog.LevelDebug, log.FormatLogfmt)
//	// ... later:
//	for _, line := range rec.Lines() {
//	    fmt.Println(line)
//	}
package log
