package compat

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks compatibility issues.
type Severity string

// Known severities.
const (
	Critical Severity = "critical"
	High     Severity = "high"
	Medium   Severity = "medium"
	Low      Severity = "low"
)

// Issue is a detected compatibility problem. Repeats of the same issue
// are merged into one entry.
type Issue struct {
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        time.Time `json:"timestamp"` // Last occurrence.
	Count       int       `json:"count"`
	Renderer    string    `json:"renderer"`
	Mobile      bool      `json:"mobile"`
}

// Warning is an informational message about the device.
type Warning struct {
	Message string    `json:"message"`
	Time    time.Time `json:"timestamp"`
}

// ShaderError records a failed shader compilation.
type ShaderError struct {
	Log    string    `json:"error"`
	Source string    `json:"source"` // Leading excerpt of the failing source.
	Time   time.Time `json:"timestamp"`
}

// ExcerptLen is the number of source bytes kept with a ShaderError.
const ExcerptLen = 200

func excerpt(src string) string {
	if len(src) <= ExcerptLen {
		return src
	}
	return src[:ExcerptLen] + "..."
}

// ShaderKind guesses the stage of a shader from its source.
func ShaderKind(src string) string {
	switch {
	case strings.Contains(src, "gl_Position"):
		return "vertex"
	case strings.Contains(src, "gl_FragColor"),
		strings.Contains(src, "gl_FragData"),
		strings.Contains(src, "out vec4"):
		return "fragment"
	}
	return "unknown"
}

var glErrorNames = map[uint32]string{
	0x0500: "INVALID_ENUM",
	0x0501: "INVALID_VALUE",
	0x0502: "INVALID_OPERATION",
	0x0503: "STACK_OVERFLOW",
	0x0504: "STACK_UNDERFLOW",
	0x0505: "OUT_OF_MEMORY",
	0x0506: "INVALID_FRAMEBUFFER_OPERATION",
}

// GLErrorName returns the symbolic name of a GL error code.
func GLErrorName(code uint32) string {
	if name, ok := glErrorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN (0x%04x)", code)
}
