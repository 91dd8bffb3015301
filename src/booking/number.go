package booking

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateBookingNumber builds a human-readable booking number:
// "BK" + UTC timestamp + 4-digit random suffix. Uniqueness is a convenience
// property; a collision surfaces as a unique-index violation and creation is
// retried.
func GenerateBookingNumber() string {
	return fmt.Sprintf("BK%s%04d", time.Now().UTC().Format("20060102150405"), 1000+rand.Intn(9000))
}
