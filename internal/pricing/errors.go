package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the service refuses a login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidProductID is returned for ids the service cannot address.
	ErrInvalidProductID = errors.New("invalid product id")
)

// defaultRegistrationMessage is shown when the service rejects a signup without explanation.
const defaultRegistrationMessage = "Registration failed"

// RegistrationError carries the service's explanation of a rejected signup.
type RegistrationError struct {
	StatusCode int
	Message    string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration rejected [%d]: %s", e.StatusCode, e.Message)
}

// StatusError is returned when the service answers with an unexpected status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code error: [%d] %s", e.StatusCode, e.Status)
}
