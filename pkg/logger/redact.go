package logger

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

const redactedValue = "[REDACTED]"

// RedactingWriter masks the values of configured JSON fields before the
// log line reaches its destination, so account identifiers and credential
// material never land in log storage. It operates on zerolog's JSON
// output: `"field":"value"` becomes `"field":"[REDACTED]"`.
type RedactingWriter struct {
	out     io.Writer
	pattern *regexp.Regexp
}

// NewRedactingWriter wraps out, masking the named fields. Field names are
// matched exactly and case-sensitively, as zerolog emits them.
func NewRedactingWriter(out io.Writer, fields []string) *RedactingWriter {
	escaped := make([]string, 0, len(fields))
	for _, f := range fields {
		escaped = append(escaped, regexp.QuoteMeta(f))
	}
	pattern := regexp.MustCompile(
		fmt.Sprintf(`"(%s)":"(?:[^"\\]|\\.)*"`, strings.Join(escaped, "|")),
	)
	return &RedactingWriter{out: out, pattern: pattern}
}

func (w *RedactingWriter) Write(p []byte) (int, error) {
	redacted := w.pattern.ReplaceAll(p, []byte(`"$1":"`+redactedValue+`"`))
	if _, err := w.out.Write(redacted); err != nil {
		return 0, err
	}
	// Report the original length: callers account for what they passed
	// in, not the size after masking.
	return len(p), nil
}
