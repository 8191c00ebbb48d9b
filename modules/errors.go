package modules

import "errors"

// Every precondition is checked before any mutation: a transition either
// fully commits or returns one of these with the state untouched.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAlreadyRegistered = errors.New("airline already registered")
	ErrAlreadyCreated    = errors.New("airline already created")
	ErrFeeTooLow         = errors.New("registration fee too low")
	ErrInvalidIndex      = errors.New("index not assigned to oracle")
	ErrRequestClosed     = errors.New("oracle request closed or unknown")
	ErrUnknownFlight     = errors.New("flight not registered")
	ErrAlreadyInsured    = errors.New("passenger already insured for flight")
	ErrPremiumTooHigh    = errors.New("premium above insurance cap")
	ErrPolicyNotFound    = errors.New("insurance policy not found")
	ErrNotEligible       = errors.New("flight status not eligible for compensation")
)
