package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ciIndicatorVars are environment variables whose presence marks a CI run.
var ciIndicatorVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
}

// isInCIEnvironment reports whether the process appears to be running in a
// continuous integration environment.
func isInCIEnvironment() bool {
	for _, name := range ciIndicatorVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// getCIMetadata collects identifying attributes of the current CI run.
// Outside CI it returns an empty map.
func getCIMetadata() map[string]string {
	metadata := make(map[string]string)

	if !isInCIEnvironment() {
		return metadata
	}
	metadata["ci"] = "true"

	switch {
	case os.Getenv("GITHUB_ACTIONS") != "":
		metadata["ci_system"] = "github_actions"
		if v := os.Getenv("GITHUB_RUN_ID"); v != "" {
			metadata["ci_run_id"] = v
		}
		if v := os.Getenv("GITHUB_SHA"); v != "" {
			metadata["ci_commit"] = v
		}
		if v := os.Getenv("GITHUB_REF_NAME"); v != "" {
			metadata["ci_branch"] = v
		}
	case os.Getenv("GITLAB_CI") != "":
		metadata["ci_system"] = "gitlab_ci"
		if v := os.Getenv("CI_PIPELINE_ID"); v != "" {
			metadata["ci_run_id"] = v
		}
		if v := os.Getenv("CI_COMMIT_SHA"); v != "" {
			metadata["ci_commit"] = v
		}
	case os.Getenv("CIRCLECI") != "":
		metadata["ci_system"] = "circleci"
		if v := os.Getenv("CIRCLE_BUILD_NUM"); v != "" {
			metadata["ci_run_id"] = v
		}
	}

	return metadata
}

// CIHandler is a custom slog.Handler that adds CI environment metadata
// and source code location to log records.
type CIHandler struct {
	// The underlying handler (usually JSON)
	handler slog.Handler
	// CI metadata to add to every log record
	metadata map[string]string
	// Whether to add source location info
	addSource bool
}

// NewCIHandler creates a new CIHandler that wraps a JSON handler writing to
// out, adding CI metadata and source information to each log record.
func NewCIHandler(out io.Writer, opts *slog.HandlerOptions) *CIHandler {
	metadata := getCIMetadata()

	var handlerOpts *slog.HandlerOptions
	if opts != nil {
		// Clone the options to avoid modifying the caller's options
		handlerOptsCopy := *opts
		handlerOpts = &handlerOptsCopy
	} else {
		handlerOpts = &slog.HandlerOptions{}
	}

	jsonHandler := slog.NewJSONHandler(out, handlerOpts)

	return &CIHandler{
		handler:   jsonHandler,
		metadata:  metadata,
		addSource: handlerOpts.AddSource,
	}
}

// Enabled implements the slog.Handler interface.
func (h *CIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs implements the slog.Handler interface.
func (h *CIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CIHandler{
		handler:   h.handler.WithAttrs(attrs),
		metadata:  h.metadata,
		addSource: h.addSource,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *CIHandler) WithGroup(name string) slog.Handler {
	return &CIHandler{
		handler:   h.handler.WithGroup(name),
		metadata:  h.metadata,
		addSource: h.addSource,
	}
}

// Handle implements the slog.Handler interface.
func (h *CIHandler) Handle(ctx context.Context, record slog.Record) error {
	// Clone the record to avoid modifying the original
	enhanced := record.Clone()

	if h.addSource {
		pc, file, line, ok := runtime.Caller(4) // Adjust frames as needed
		if ok {
			funcName := runtime.FuncForPC(pc).Name()
			enhanced.AddAttrs(
				slog.String("source_file", file),
				slog.Int("source_line", line),
				slog.String("source_func", funcName),
			)
		}
	}

	for key, value := range h.metadata {
		enhanced.AddAttrs(slog.String(key, value))
	}

	// Sub-second precision helps correlate records emitted in the same second
	nanoseconds := enhanced.Time.UnixNano() % int64(time.Second)
	enhanced.AddAttrs(slog.Int64("timestamp_nano", nanoseconds))

	return h.handler.Handle(ctx, enhanced)
}
