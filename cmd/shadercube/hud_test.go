package main

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/hexaflex/shadercube/quality"
)

func TestHUDPrint(t *testing.T) {
	var buf bytes.Buffer
	h := NewHUD(&buf, termenv.WithProfile(termenv.Ascii))

	h.Print(Status{
		Shader:      "fragment_blur",
		Level:       quality.Medium,
		FPS:         42.5,
		TargetFPS:   60,
		FrameTimeMs: 23.5,
		Rules:       []string{"precision", "loopReduction"},
		Compat:      "no issues detected",
		Fallback:    true,
		Preset:      "Motion Blur",
		Scale:       0.9,
	})

	line := buf.String()
	assert.Contains(t, line, "BLUR")
	assert.Contains(t, line, "42.5 fps")
	assert.Contains(t, line, "23.50ms")
	assert.Contains(t, line, "MEDIUM")
	assert.Contains(t, line, "WIREFRAME")
	assert.Contains(t, line, "@90%")
	assert.Contains(t, line, "preset=Motion Blur")
	assert.Contains(t, line, "opt=precision,loopReduction")
	assert.Contains(t, line, "[no issues detected]")
	assert.NotContains(t, line, "\x1b[")
}
