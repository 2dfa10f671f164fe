package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions that cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFetchFailed is returned when a page cannot be retrieved or the
	// server answers with a non-2xx status.
	ErrFetchFailed = errors.New("failed to fetch page")

	// ErrEmptyURL is returned when no URL is given.
	ErrEmptyURL = errors.New("URL is required")

	// ErrUnsupportedContentType is returned for responses that are not HTML.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrContentTooLarge is returned when a response exceeds the size limit.
	ErrContentTooLarge = errors.New("content too large")

	// ErrNoContent is returned when nothing readable could be extracted.
	ErrNoContent = errors.New("no text content could be extracted")
)
