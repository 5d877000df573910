// Package cache persists the last IP address pushed to the DNS provider.
package cache

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is wrapped by the ReadError returned when nothing has
// ever been written to the store.
var ErrNotInitialized = errors.New("cache not initialized")

// ReadError reports that the stored IP could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cache: read: %v", e.Err)
	}
	return fmt.Sprintf("cache: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Store is a durable single-value store holding the last synced IP.
type Store interface {
	// Exists reports whether a value has ever been written.
	Exists() (bool, error)
	// Read returns the stored value, or a *ReadError.
	Read() (string, error)
	// Write replaces the stored value. Readers never observe a partial write.
	Write(ip string) error
}

// Changed reports whether ip differs from the stored value. An absent value
// counts as changed. The comparison is exact; callers trim beforehand.
func Changed(s Store, ip string) (bool, error) {
	ok, err := s.Exists()
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	stored, err := s.Read()
	if err != nil {
		return false, err
	}
	return stored != ip, nil
}
