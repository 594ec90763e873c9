package sequencer

import "errors"

// ErrPoolExhausted is returned when no unused question of any difficulty remains.
// It signals a normal end of the session, not a fault.
var ErrPoolExhausted = errors.New("question pool exhausted")
