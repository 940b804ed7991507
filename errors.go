package main

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("link not found")

// ValidationError is raised before anything reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type StoreReadError struct {
	Op  string
	Err error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsStoreRead(err error) bool {
	var target *StoreReadError
	return errors.As(err, &target)
}

func IsStoreWrite(err error) bool {
	var target *StoreWriteError
	return errors.As(err, &target)
}
