package dynamics

import "github.com/pkg/errors"

// NewMissingKeyError is returned when an Assignment lookup finds no value.
func NewMissingKeyError(k Key) error {
	return errors.Errorf("no value assigned to variable %q", k.String())
}

// NewWrongValueTypeError is returned when an Assignment holds a value of an
// unexpected type for the requested key.
func NewWrongValueTypeError(k Key, want string) error {
	return errors.Errorf("variable %q does not hold a %s", k.String(), want)
}

// NewTooManyJointsError is returned when a link's wrench balance would
// exceed the configured maximum arity.
func NewTooManyJointsError(link string, degree, max int) error {
	return errors.Errorf("link %q connects %d joints, above the maximum of %d", link, degree, max)
}

// NewUnimplementedSchemeError is returned for collocation schemes that are
// declared but not supported.
func NewUnimplementedSchemeError(s CollocationScheme) error {
	return errors.Errorf("collocation scheme %q is not implemented", s.String())
}

// NewLengthMismatchError is returned when a per-joint or per-phase slice
// argument has the wrong length.
func NewLengthMismatchError(what string, got, want int) error {
	return errors.Errorf("expected %d %s, got %d", want, what, got)
}

// NewNonPlanarAxisError is returned when a planar axis is not aligned with
// a coordinate axis.
func NewNonPlanarAxisError() error {
	return errors.New("planar axis must be aligned with x, y or z")
}

// NewZeroGravityError is returned when contact constraints are requested
// without a usable gravity direction.
func NewZeroGravityError() error {
	return errors.New("contact constraints require a nonzero gravity vector")
}
