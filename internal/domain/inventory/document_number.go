package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentSequencer returns the next sequence value for a tenant, document
// prefix and day. Implementations must guarantee that concurrently issued
// values for the same (tenant, prefix, date) are distinct and strictly
// increasing. Sequences reset daily per tenant and prefix.
type DocumentSequencer interface {
	Next(ctx context.Context, tenantID uuid.UUID, prefix string, date time.Time) (int64, error)
}

// FormatMovementNumber builds a movement document number: a 3-letter type
// prefix, the 8-digit date and a 6-digit zero-padded sequence.
func FormatMovementNumber(prefix string, date time.Time, sequence int64) string {
	return fmt.Sprintf("%s%s%06d", prefix, date.Format("20060102"), sequence)
}

// FormatReservationNumber builds a reservation number: RSV, the 8-digit date
// and a 4-digit zero-padded sequence, dash separated.
func FormatReservationNumber(date time.Time, sequence int64) string {
	return fmt.Sprintf("RSV-%s-%04d", date.Format("20060102"), sequence)
}

// ReservationNumberPrefix is the sequencer prefix used for reservation numbers
const ReservationNumberPrefix = "RSV"
