package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnsupportedListType = errors.New("unsupported list type")
	ErrWrongFileFormat     = errors.New("wrong file format")
)
