package usecase

import (
	"time"

	"StorkPull/internal/domain/models"
)

// FreshnessWindow is how old a signature timestamp may be and still pass.
const FreshnessWindow = 60 * time.Minute

// ValidatePrice is the local verdict for one signed price. It does no I/O.
// A point missing its hash, price or timestamp is invalid, as is one whose
// signature is older than FreshnessWindow at now.
func ValidatePrice(p models.SignedPrice, now time.Time) bool {
	if p.MsgHash == "" || !p.Price.Valid || p.Timestamp.IsZero() {
		return false
	}
	return now.Sub(p.Timestamp) <= FreshnessWindow
}
