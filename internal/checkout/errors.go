package checkout

import "errors"

var (
	// ErrNoProducts rejects a session request before any cache write
	// or gateway call.
	ErrNoProducts = errors.New("checkout: invalid or empty products list")

	// ErrSessionNotFound: no gateway session carries the order ref.
	ErrSessionNotFound = errors.New("checkout: session not found")

	// ErrPaymentNotSuccessful: the session exists but is not paid.
	ErrPaymentNotSuccessful = errors.New("checkout: payment not successful")
)
