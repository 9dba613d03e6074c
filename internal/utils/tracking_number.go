package utils

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/chandankhang/CompTrack/internal/constants"
)

const trackingSuffixChars = "0123456789abcdefghijklmnopqrstuvwxyz"
const trackingSuffixLength = 7

// GenerateTrackingNumber generates a public complaint tracking number in the
// format COMP-<unix millis>-<7 random base36 chars>. The millisecond timestamp
// plus random suffix makes collisions negligible; the database unique index
// remains the authoritative guard.
func GenerateTrackingNumber() (string, error) {
	bytes := make([]byte, trackingSuffixLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	suffix := make([]byte, trackingSuffixLength)
	for i, b := range bytes {
		suffix[i] = trackingSuffixChars[int(b)%len(trackingSuffixChars)]
	}

	return fmt.Sprintf("%s-%d-%s",
		constants.TrackingNumberPrefix,
		time.Now().UnixMilli(),
		suffix,
	), nil
}
