package payoutRepo

import "errors"

// ErrDuplicatePayout is returned when a payout already exists for the booking
// or transaction; creation callers treat it as "skipped".
var ErrDuplicatePayout = errors.New("payout already exists for booking")
