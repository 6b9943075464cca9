package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"fjacquet/sms-ledger/internal/models"
)

// Fingerprint identifies a transaction across re-uploads of the same text.
// dateKey is the ISO date when it was parsed confidently, otherwise the raw
// date string as it appeared in the message.
func Fingerprint(amountMinor int64, dateKey, accountSuffix, rawText string) string {
	payload := strings.Join([]string{
		strconv.FormatInt(amountMinor, 10),
		dateKey,
		accountSuffix,
		models.NormalizeWhitespace(rawText),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
