// Package systems manages the startup and shutdown of the demo's subsystems.
package systems

import (
	"log"

	"github.com/pkg/errors"
)

// System represents a subsystem with internal resources which need
// explicit initialization and cleanup.
type System interface {
	// Name yields a short, unique name for the system.
	Name() string

	// Startup initializes internal resources.
	Startup() error

	// Shutdown cleans up internal resources.
	Shutdown() error
}

// Map contains a list of registered systems, in startup order.
type Map []System

// Connect adds the given system to the map.
// Returns false if a system with the same name is already present.
func (m *Map) Connect(sys System) bool {
	if (*m).Find(sys.Name()) > -1 {
		return false
	}

	*m = append(*m, sys)
	return true
}

// Startup initializes all systems in the order they were connected.
// A failing system does not prevent the others from starting.
func (m Map) Startup() error {
	var errorset ErrorSet

	for _, sys := range m {
		log.Println(sys.Name(), "startup")
		if err := sys.Startup(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", sys.Name()))
		}
	}

	if errorset.Len() == 0 {
		return nil
	}

	return errorset
}

// Shutdown cleans up all systems in reverse connection order.
func (m Map) Shutdown() error {
	var errorset ErrorSet

	for i := len(m) - 1; i >= 0; i-- {
		sys := m[i]
		log.Println(sys.Name(), "shutdown")
		if err := sys.Shutdown(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", sys.Name()))
		}
	}

	if errorset.Len() == 0 {
		return nil
	}

	return errorset
}

// Find returns the index for the system with the given name.
// Returns -1 if it can't be found.
func (m Map) Find(name string) int {
	for i, sys := range m {
		if sys.Name() == name {
			return i
		}
	}
	return -1
}
