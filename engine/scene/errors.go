package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/command"
)

// DuplicateIDError reports two commands sharing an id within one frame. It is returned
// before any storage is built.
type DuplicateIDError struct {
	ID string
	// First and Second are the positions of the clashing commands in the flattened list.
	First, Second int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("scene: duplicate command id %q at positions %d and %d", e.ID, e.First, e.Second)
}

// BuildError reports a command whose storage failed to build.
type BuildError struct {
	ID   string
	Kind command.Kind
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("scene: build %s command %q: %v", e.Kind, e.ID, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
