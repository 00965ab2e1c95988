package repository

import "fmt"

// StorageError wraps any fault raised by the backing store.
type StorageError struct {
	Op   string // replace_issues, get_issues, is_scanned, find_scan, ...
	Repo string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s for %s: %v", e.Op, e.Repo, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, repo string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Repo: repo, Err: err}
}
