package ingest

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrTooLarge          = errors.New("archive too large")
	ErrExtractionFailed  = errors.New("archive extraction failed")
)
