package utils

import "go.uber.org/zap"

// GoSafe runs fn in a new goroutine and logs instead of crashing when it panics.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("Recovered from goroutine panic", zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		fn()
	}()
}
