package uploads

import "errors"

var (
	ErrEmptyFile    = errors.New("No file uploaded")
	ErrBlobNotFound = errors.New("File not found")
)
