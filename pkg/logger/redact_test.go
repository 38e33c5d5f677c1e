package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRedactingWriter_MasksConfiguredFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewRedactingWriter(&buf, []string{"email", "password"})

	line := `{"level":"info","email":"a@x.com","password":"pw1","path":"/users"}` + "\n"
	n, err := w.Write([]byte(line))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != len(line) {
		t.Fatalf("Write reported %d bytes, want %d", n, len(line))
	}

	out := buf.String()
	if strings.Contains(out, "a@x.com") || strings.Contains(out, "pw1") {
		t.Fatalf("PII leaked into output: %s", out)
	}
	if !strings.Contains(out, `"email":"[REDACTED]"`) || !strings.Contains(out, `"password":"[REDACTED]"`) {
		t.Fatalf("fields not masked: %s", out)
	}
	if !strings.Contains(out, `"path":"/users"`) {
		t.Fatalf("unrelated field was altered: %s", out)
	}
}

func TestRedactingWriter_HandlesEscapedQuotes(t *testing.T) {
	var buf bytes.Buffer
	w := NewRedactingWriter(&buf, []string{"password"})

	if _, err := w.Write([]byte(`{"password":"p\"w","ok":true}`)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `p\"w`) {
		t.Fatalf("escaped value leaked: %s", out)
	}
}

func TestRedactingWriter_WithZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(NewRedactingWriter(&buf, []string{"email"}))

	log.Info().Str("email", "a@x.com").Str("action", "login").Msg("attempt")

	out := buf.String()
	if strings.Contains(out, "a@x.com") {
		t.Fatalf("email leaked: %s", out)
	}
	if !strings.Contains(out, `"action":"login"`) {
		t.Fatalf("unrelated field altered: %s", out)
	}
}
