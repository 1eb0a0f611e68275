package ocr

import "fmt"

// ImageLoadError indicates the query image could not be read or decoded.
// It is fatal to the detection request.
type ImageLoadError struct {
	Path string
	Err  error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("could not load image %s: %v", e.Path, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// UnavailableError indicates the OCR engine is missing a required language
// model. Without this check a missing language pack surfaces as "zero
// regions found" with no diagnosis.
type UnavailableError struct {
	Language string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf(
		"ocr language %q is not installed; install the corresponding tesseract language data (e.g. %s.traineddata)",
		e.Language, e.Language)
}

// EngineError wraps a failure inside the OCR engine itself.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr engine failed: %v", e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
