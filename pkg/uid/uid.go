package uid

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

const refAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Ref generates a human-readable stock reference code, e.g.
// "STK1756600000000X4K2". Not guaranteed collision-free the way a UUID
// is; products stay keyed by id.
func Ref() string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = refAlphabet[rand.Intn(len(refAlphabet))]
	}
	return fmt.Sprintf("STK%d%s", time.Now().UnixMilli(), strings.ToUpper(string(suffix)))
}
