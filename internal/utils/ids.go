package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewTransactionID returns a payment reference of the form TRX-xxxxxxxx,
// taken from the first eight hex digits of a random UUID.
func NewTransactionID() string {
	return "TRX-" + strings.ToLower(uuid.NewString()[:8])
}
