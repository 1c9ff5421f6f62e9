package pool

import "fmt"

type unwrapper interface {
	Unwrap() Task
}

// ResultAs returns the completed task with the given identity as a T. Wrappers
// added by Named are looked through.
func ResultAs[T Task](c Controller, id ID) (T, error) {
	var zero T

	res, ok := c.GetResult(id)
	if !ok {
		return zero, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}

	task := res.Task
	for {
		if t, ok := task.(T); ok {
			return t, nil
		}
		u, ok := task.(unwrapper)
		if !ok {
			return zero, fmt.Errorf("%w: task %d is %T", ErrTypeMismatch, id, res.Task)
		}
		task = u.Unwrap()
	}
}
