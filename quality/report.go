package quality

import "github.com/hexaflex/shadercube/device"

// Report summarizes the controller state for diagnostic export.
type Report struct {
	Device      device.Profile `json:"deviceProfile"`
	Level       Level          `json:"currentQuality"`
	TargetFPS   float64        `json:"targetFPS"`
	Reasons     []string       `json:"reasons"`
	Suggestions []string       `json:"optimizations"`
}

// Report returns the current controller state.
func (c *Controller) Report() Report {
	return Report{
		Device:      c.profile,
		Level:       c.level,
		TargetFPS:   c.config.TargetFPS,
		Reasons:     Reasons(c.profile),
		Suggestions: Suggestions(c.level),
	}
}

// Reasons lists the device properties which limit quality.
func Reasons(p device.Profile) []string {
	var out []string
	if !p.Available {
		out = append(out, "No graphics backend available")
	}
	if p.IsMobile {
		out = append(out, "Mobile device detected")
	}
	if p.MemoryGB < 4 {
		out = append(out, "Limited RAM (<4GB)")
	}
	if p.Cores < 4 {
		out = append(out, "Limited CPU cores")
	}
	if p.Available && p.MaxTextureSize < 4096 {
		out = append(out, "Limited GPU texture support")
	}
	if len(out) == 0 {
		out = append(out, "High-end device capabilities")
	}
	return out
}

// Suggestions returns tuning hints for the given level.
func Suggestions(l Level) []string {
	switch l {
	case Low:
		return []string{
			"Consider reducing shader complexity",
			"Use simpler animation patterns",
			"Limit concurrent effects",
		}
	case Medium:
		return []string{
			"Balance between quality and performance",
			"Monitor FPS during intensive scenes",
		}
	default:
		return []string{
			"Full quality mode - all features enabled",
			"Perfect for demonstrations and development",
		}
	}
}
