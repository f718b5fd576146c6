package predictions

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrModel        = errors.New("model parameters invalid")
)
