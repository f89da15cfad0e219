package optimizer

import (
	"fmt"

	"github.com/pkg/errors"
)

// Severity buckets the average frame rate of a shader.
type Severity int

// Known severities, from harmless to worst.
const (
	None Severity = iota
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case None:
		return "none"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(p []byte) error {
	for v := None; v <= Critical; v++ {
		if v.String() == string(p) {
			*s = v
			return nil
		}
	}
	return errors.Errorf("unknown severity %q", p)
}

// Thresholds defines the frame rates below which a severity applies.
type Thresholds struct {
	Critical float64
	High     float64
	Medium   float64
	Good     float64 // Below this, samples are logged as worth watching.
}

// DefaultThresholds returns the default severity thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 25, High: 35, Medium: 45, Good: 60}
}

// Severity returns the severity for the given average frame rate.
func (t Thresholds) Severity(avgFPS float64) Severity {
	switch {
	case avgFPS < t.Critical:
		return Critical
	case avgFPS < t.High:
		return High
	case avgFPS < t.Medium:
		return Medium
	default:
		return None
	}
}

// SelectRules returns the rules recommended for a severity.
func SelectRules(s Severity) []RuleID {
	switch s {
	case Critical:
		return []RuleID{LoopReduction, EffectStripping, Precision}
	case High:
		return []RuleID{LoopReduction, TrigApprox}
	case Medium:
		return []RuleID{Precision}
	default:
		return nil
	}
}
