package adapter

import "fmt"

// ConstructionError reports that a client could not be built or connected.
// Err is the underlying library error.
type ConstructionError struct {
	Service string
	Err     error
}

func (e *ConstructionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("construct %s", e.Service)
	}
	return fmt.Sprintf("construct %s: %v", e.Service, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Constructing wraps err in a ConstructionError for service. A nil err stays nil.
func Constructing(service string, err error) error {
	if err == nil {
		return nil
	}
	return &ConstructionError{Service: service, Err: err}
}

// UnknownClassError is returned when a name resolves to no known class and
// no synthetic constructor.
type UnknownClassError struct {
	Name string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class %s", e.Name)
}
