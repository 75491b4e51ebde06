package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestNewSubLogger(t *testing.T) {
	sl := NewSubLogger("TESTING")
	if sl == nil {
		t.Fatal("expected sublogger")
	}
	if NewSubLogger("TESTING") != sl {
		t.Fatal("re-registering a name should return the held sublogger")
	}
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	sl := NewSubLogger("GATING")
	Debugf(sl, "hidden %s", "message")
	if buf.Len() != 0 {
		t.Fatal("debug should be gated off by default")
	}

	Infof(sl, "shown %s", "message")
	if !strings.Contains(buf.String(), "shown message") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[INFO] GATING") {
		t.Fatalf("expected header and name, got %q", buf.String())
	}

	buf.Reset()
	sl.SetLevels(true, true, true, true)
	Debug(sl, "now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	sl.SetLevels(false, false, false, false)
	Error(sl, "quiet")
	Warn(sl, "quiet")
	Info(sl, "quiet")
	if buf.Len() != 0 {
		t.Fatalf("all levels gated, got %q", buf.String())
	}
}
