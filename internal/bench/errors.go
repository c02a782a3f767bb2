package bench

import (
	"errors"
)

// ErrProtocol marks an event sequence the aggregator's state machine
// cannot accept. It means the producer side is buggy, never the proofs
// themselves, so it is fatal.
var ErrProtocol = errors.New("lifecycle protocol violation")
