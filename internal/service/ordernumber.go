package service

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	orderNumberPrefix   = "GG"
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberSuffix   = 6

	// maxOrderNumberAttempts bounds regeneration after a uniqueness clash.
	maxOrderNumberAttempts = 5
)

// NewOrderNumber returns GG + YYMMDD + six random base-36 characters.
func NewOrderNumber(now time.Time) string {
	buf := make([]byte, orderNumberSuffix)
	base := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic(err)
		}
		buf[i] = orderNumberAlphabet[n.Int64()]
	}
	return orderNumberPrefix + now.Format("060102") + string(buf)
}
