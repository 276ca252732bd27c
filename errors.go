package swapbuffer

import "fmt"

var (
	ErrInvalidConfig     = fmt.Errorf("invalid config")
	ErrResourceExhausted = fmt.Errorf("resource exhausted")
)
