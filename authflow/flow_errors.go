package authflow

import "errors"

var (
	ErrNoPendingVerification = errors.New("no verification in progress")
)
