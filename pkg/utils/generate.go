package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func GenerateUUIDString() string {
	return uuid.New().String()
}

// GenerateBookingReference format: BK-YYYYMMDD-XXXXXX
func GenerateBookingReference(now time.Time) string {
	var b strings.Builder
	b.WriteString("BK-")
	b.WriteString(now.UTC().Format("20060102"))
	b.WriteByte('-')
	limit := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms; fall back to uuid entropy
			n = big.NewInt(int64(uuid.New()[i]) % limit.Int64())
		}
		b.WriteByte(referenceAlphabet[n.Int64()])
	}
	return b.String()
}

// GenerateTicketID format: TKT-<15 hex chars>
func GenerateTicketID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TKT-" + strings.ToUpper(id[:15])
}
