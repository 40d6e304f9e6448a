package model

import (
	"fmt"
	"strings"

	"github.com/grantlemons/expenser/internal/errs"
)

// IncompleteError is returned by Build when required fields are unset.
type IncompleteError struct {
	Entity  string
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.Entity, strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, errs.ErrIncomplete) hold.
func (e *IncompleteError) Is(target error) bool { return target == errs.ErrIncomplete }

// slot is an optional builder field.
type slot[T any] struct {
	v   T
	set bool
}

func (s *slot[T]) put(v T) { s.v, s.set = v, true }

// required collects names of unset required slots in declaration order.
type required struct {
	entity  string
	missing []string
}

func (r *required) check(name string, set bool) {
	if !set {
		r.missing = append(r.missing, name)
	}
}

func (r *required) err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return &IncompleteError{Entity: r.entity, Missing: r.missing}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
