package catalog

import "fmt"

// TypeNotFoundError is returned when a type has no cataloged definitions.
type TypeNotFoundError struct {
	Name string
}

func (e TypeNotFoundError) Error() string {
	return fmt.Sprintf("type %s not found", e.Name)
}

// Is returns true if the target error is a TypeNotFoundError.
func (e TypeNotFoundError) Is(target error) bool {
	_, ok := target.(TypeNotFoundError)
	return ok
}
