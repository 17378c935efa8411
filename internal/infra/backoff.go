package infra

import (
	"math"
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffMax  = 60 * time.Second
)

// CalculateBackoff returns the reconnect delay for the given attempt:
// exponential from one second, capped at one minute.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	delay := backoffBase * time.Duration(math.Pow(2, float64(min(retryCount, 16))))
	if delay > backoffMax {
		delay = backoffMax
	}
	return delay
}
