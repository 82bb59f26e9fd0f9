package credential

import (
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"mojotix/internal/domain"
)

// ticketPrefix is the fixed service prefix on every ticket number.
const ticketPrefix = "MJ"

// qrSize is the pixel width of the generated QR images.
const qrSize = 256

type generator struct{}

// NewGenerator returns a CredentialGenerator that mints
// MJ-<booking-unix-millis>-<3-digit-seq> ticket numbers and encodes them as
// QR PNGs locally. Collision-free without coordination: two bookings share a
// number only if they were confirmed in the same millisecond, and within a
// booking the sequence index disambiguates.
func NewGenerator() domain.CredentialGenerator {
	return &generator{}
}

func (g *generator) Mint(bookedAt time.Time, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", ticketPrefix, bookedAt.UnixMilli(), seq)
}

func (g *generator) Encode(ticketNumber string) ([]byte, error) {
	if ticketNumber == "" {
		return nil, fmt.Errorf("ticket number is empty")
	}
	png, err := qrcode.Encode(ticketNumber, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode ticket number %q: %w", ticketNumber, err)
	}
	return png, nil
}
