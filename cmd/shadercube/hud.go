package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/hexaflex/shadercube/quality"
	"github.com/hexaflex/shadercube/shader"
)

// Status is the information shown by the HUD.
type Status struct {
	Shader      string
	Level       quality.Level
	FPS         float64
	TargetFPS   float64
	FrameTimeMs float64
	Rules       []string // Active optimizer rules.
	Compat      string   // Compatibility summary.
	Fallback    bool     // Wireframe fallback in use.
	Benchmark   string   // Shader being benchmarked, if any.
	Preset      string   // Active uniform preset, if any.
	Scale       float64  // Render scale; 0 is treated as 1.
}

// HUD prints colour-coded status lines to a terminal.
type HUD struct {
	out *termenv.Output
}

// NewHUD creates a HUD writing to w. The colour profile is detected from w.
func NewHUD(w io.Writer, opts ...termenv.OutputOption) *HUD {
	return &HUD{out: termenv.NewOutput(w, opts...)}
}

// Print writes one status line.
func (h *HUD) Print(s Status) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-14s ", shader.DisplayName(s.Shader))
	sb.WriteString(h.fps(s.FPS, s.TargetFPS))
	fmt.Fprintf(&sb, " %6.2fms ", s.FrameTimeMs)
	sb.WriteString(h.level(s.Level))

	if s.Scale > 0 && s.Scale < 1 {
		fmt.Fprintf(&sb, " @%d%%", int(s.Scale*100+0.5))
	}
	if s.Preset != "" {
		sb.WriteString(" preset=" + s.Preset)
	}
	if s.Fallback {
		sb.WriteString(" " + h.out.String("WIREFRAME").Foreground(h.out.Color("#ff5555")).Bold().String())
	}
	if len(s.Rules) > 0 {
		sb.WriteString(" opt=" + strings.Join(s.Rules, ","))
	}
	if s.Benchmark != "" {
		sb.WriteString(" bench=" + s.Benchmark)
	}
	if s.Compat != "" {
		sb.WriteString(" [" + s.Compat + "]")
	}

	fmt.Fprintln(h.out, sb.String())
}

// fps colours the frame rate relative to the target.
func (h *HUD) fps(fps, target float64) string {
	color := "#50fa7b"
	switch {
	case fps < target*quality.DegradeRatio:
		color = "#ff5555"
	case fps < target*quality.UpgradeRatio:
		color = "#f1fa8c"
	}
	return h.out.String(fmt.Sprintf("%6.1f fps", fps)).Foreground(h.out.Color(color)).String()
}

func (h *HUD) level(l quality.Level) string {
	color := map[quality.Level]string{
		quality.High:   "#50fa7b",
		quality.Medium: "#f1fa8c",
		quality.Low:    "#ff5555",
	}[l]
	return h.out.String(strings.ToUpper(l.String())).Foreground(h.out.Color(color)).String()
}
