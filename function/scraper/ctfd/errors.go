package ctfd

import "errors"

var (
	ErrAuth     = errors.New("authentication failed")
	ErrNetwork  = errors.New("network error")
	ErrServer   = errors.New("server error")
	ErrNotFound = errors.New("not found")
)
