package quality

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Level is a discrete rendering fidelity tier.
type Level int

// Known quality levels, ordered from best to worst.
const (
	High Level = iota
	Medium
	Low
)

func (l Level) String() string {
	switch l {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel returns the level for the given name.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return High, nil
	case "medium":
		return Medium, nil
	case "low":
		return Low, nil
	}
	return High, errors.Errorf("unknown quality level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(p []byte) error {
	v, err := ParseLevel(string(p))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// degrade returns the next lower level. Low stays Low.
func (l Level) degrade() Level {
	if l < Low {
		return l + 1
	}
	return Low
}

// upgrade returns the next higher level. High stays High.
func (l Level) upgrade() Level {
	if l > High {
		return l - 1
	}
	return High
}
