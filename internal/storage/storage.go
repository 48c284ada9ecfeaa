package storage

import "errors"

var (
	ErrImageNotFound = errors.New("image not found")
	ErrTagNotFound   = errors.New("tag not found")
	ErrTagExists     = errors.New("tag exists")
)
