package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type lineRangeError struct {
	line  int
	lines int
}

func (e lineRangeError) Error() string {
	return fmt.Sprintf("line %d out of range: document has %d lines", e.line, e.lines)
}
