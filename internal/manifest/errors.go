package manifest

import "fmt"

// SerializationError reports that a new version field could not be written
// into a manifest.
type SerializationError struct {
	Path   string
	Reason string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot write version field in %s: %s", e.Path, e.Reason)
}
