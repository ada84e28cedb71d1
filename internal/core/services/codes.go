package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// newReservationCode builds a human-typeable code like RSV-20250901-4F9A2C1B.
// The suffix comes from crypto/rand, and the reservations table carries a
// unique index on the code, so the caller retries on the rare collision.
func newReservationCode(now time.Time) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// the clock so bookings keep flowing.
		return fmt.Sprintf("RSV-%s-%08X", now.Format("20060102"), now.UnixNano()&0xFFFFFFFF)
	}

	return fmt.Sprintf("RSV-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(b)))
}
