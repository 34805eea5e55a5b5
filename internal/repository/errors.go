package repository

import "errors"

// ErrRecordNotFound is returned when no record with the requested name has been saved yet.
var ErrRecordNotFound = errors.New("record not found")
