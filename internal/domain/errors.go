package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrJobRunning          = errors.New("job already running")
	ErrNoData              = errors.New("no data in window")
	ErrEmptyMarketplace    = errors.New("empty marketplace code")
	ErrReservedMarketplace = errors.New("marketplace code ALL is reserved")
	ErrUnsupportedWindow   = errors.New("unsupported window length")
)
