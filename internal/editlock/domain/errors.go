package domain

import "errors"

var (
	ErrMalformedLock    = errors.New("malformed edit lock")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrReportNotFound   = errors.New("sweep report not found")
	ErrSweepInProgress  = errors.New("sweep already in progress")
)
