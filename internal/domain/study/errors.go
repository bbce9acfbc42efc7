package study

import "errors"

var (
	ErrNotFound     = errors.New("study not found")
	ErrInvalidInput = errors.New("invalid study input")
)
