package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyPublished is returned when publishing a paper twice.
	ErrAlreadyPublished = errors.New("paper already published")
)
