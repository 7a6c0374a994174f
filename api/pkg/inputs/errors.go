package inputs

import "errors"

// Fatal errors close the offending client; the channel itself stays usable
// for every other connected client.
var (
	ErrFatalMessage       = errors.New("inputs: message exceeds receive buffer")
	ErrBadMigrationHeader = errors.New("inputs: migration data header magic/version mismatch")
	ErrAssertion          = errors.New("inputs: routing invariant violated")
)

// ErrAlreadyBound is returned to the caller attempting to attach a second
// device of the same kind; channel state is left unchanged.
var ErrAlreadyBound = errors.New("inputs: device already bound")
