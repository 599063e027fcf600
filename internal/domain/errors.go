package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrProviderUnavailable is returned when no wallet provider is configured
	ErrProviderUnavailable = errors.New("wallet provider unavailable")

	// ErrNotConnected is returned when an action requires a wallet session
	ErrNotConnected = errors.New("wallet not connected")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned when a delegation amount fails validation
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNetworkMismatch is returned when the wallet is on the wrong chain
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrTransactionFailed is returned when a transaction could not be submitted or confirmed
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrTransactionReverted is returned when a mined transaction reverted
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrAlreadyInProgress is returned when a delegation is already outstanding
	ErrAlreadyInProgress = errors.New("delegation already in progress")

	// ErrInvalidTransition is returned when a record status change is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")
)

// EIP-1193 provider error codes
const (
	ProviderCodeUserRejected      = 4001
	ProviderCodeUnauthorized      = 4100
	ProviderCodeUnsupportedMethod = 4200
	ProviderCodeChainNotAdded     = 4902
)

// ProviderError is an error reported by a wallet provider
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the provider error code
func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// IsChainNotAdded reports whether err says the requested chain is unknown to the wallet
func IsChainNotAdded(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == ProviderCodeChainNotAdded
}

// IsUserRejected reports whether err is a user rejection from the wallet
func IsUserRejected(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == ProviderCodeUserRejected
}
