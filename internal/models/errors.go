package models

import "errors"

var (
	// ErrUnsupportedMediaType is returned for media types outside the accepted set.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrFileTooLarge is returned when an upload exceeds the size ceiling.
	ErrFileTooLarge = errors.New("file too large")
	// ErrExtractionFailure is returned when a decoder or OCR engine cannot produce text.
	ErrExtractionFailure = errors.New("text extraction failed")
	// ErrPortfolioNotFound is returned by stores for unknown ids.
	ErrPortfolioNotFound = errors.New("portfolio not found")
	// ErrTaskNotFound is returned for unknown extraction job ids.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidPortfolio is returned when an edited portfolio fails validation.
	ErrInvalidPortfolio = errors.New("invalid portfolio data")
)
