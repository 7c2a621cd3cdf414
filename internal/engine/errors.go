package engine

import "fmt"

// ImageReadError is returned when the receipt image cannot be read.
type ImageReadError struct {
	Err  error
	Path string
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("image read failed: %s: %v", e.Path, e.Err)
}

func (e *ImageReadError) Unwrap() error {
	return e.Err
}
