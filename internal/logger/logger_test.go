package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("INFO")
	})
	return &buf
}

func TestVerb(t *testing.T) {
	t.Run("OpObjectAndDetail", func(t *testing.T) {
		buf := capture(t)
		SetLevel("DEBUG")

		Verb("write", "obj", "extent=%d~%d", 0, 5)
		assert.Contains(t, buf.String(), "[DEBUG] write obj: extent=0~5")
	})

	t.Run("EmptyObjectOmitsIt", func(t *testing.T) {
		buf := capture(t)
		SetLevel("DEBUG")

		Verb("selfmanaged_snap_create", "", "id=%d", 3)
		assert.Contains(t, buf.String(), "[DEBUG] selfmanaged_snap_create: id=3")
	})

	t.Run("EmptyDetailOmitsColon", func(t *testing.T) {
		buf := capture(t)
		SetLevel("DEBUG")

		Verb("omap_clear", "obj", "")
		line := strings.TrimRight(buf.String(), "\n")
		assert.True(t, strings.HasSuffix(line, "omap_clear obj"), line)
	})

	t.Run("SilentAboveDebug", func(t *testing.T) {
		buf := capture(t)
		SetLevel("INFO")

		Verb("write", "obj", "extent=%d~%d", 0, 5)
		assert.Empty(t, buf.String())
	})
}

func TestLevelGating(t *testing.T) {
	buf := capture(t)
	SetLevel("WARN")

	Info("not shown")
	Warn("shown")
	Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "[WARN] shown")
	assert.Contains(t, out, "[ERROR] also shown")
}
