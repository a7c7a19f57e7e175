package store

import "errors"

// StorageError marks a persistence failure. The tracking path swallows it
// (events are fire-and-forget), the dashboard path maps it to a visible
// "stats unavailable" state instead of serving zeros as real data.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
