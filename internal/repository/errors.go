package repository

import "errors"

// ErrStaleWrite reports a conditional update that matched no rows because the
// record changed since it was read.
var ErrStaleWrite = errors.New("record changed concurrently")
