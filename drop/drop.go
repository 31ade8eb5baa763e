//go:build !solution

// Package drop defines the destructor hook run by reference-counted
// containers and single-use channels when they destroy a payload.
package drop

// Dropper is implemented by payloads that own resources which must be
// released when the last owner lets go of them.
type Dropper interface {
	Drop()
}

// Value destroys the payload *p. If the payload implements Dropper, its
// Drop method is called. The slot is then zeroed so that the garbage
// collector can reclaim whatever it referenced.
func Value[T any](p *T) {
	if d, ok := any(p).(Dropper); ok {
		d.Drop()
	} else if d, ok := any(*p).(Dropper); ok {
		d.Drop()
	}

	var zero T
	*p = zero
}
