package ids

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

func New() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// NewTicketID returns a short reference token in the TKT-XXXXXXXX form
// handed to customers.
func NewTicketID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "TKT-" + strings.ToUpper(hex.EncodeToString(buf))
}
