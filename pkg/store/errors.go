package store

import "fmt"

// StoreError represents errors accessing the message database.
type StoreError struct {
	Path string
	Op   string // "open", "save", "load"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
