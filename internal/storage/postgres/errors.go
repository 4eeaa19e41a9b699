package postgres

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleRequest means a guarded write lost to a newer request id.
	ErrStaleRequest = errors.New("stale request id")

	// ErrQuotaExceeded is the parent for both quota variants, so callers can
	// match either the family or the specific window.
	ErrQuotaExceeded       = errors.New("ai quota exceeded")
	ErrQuotaMinuteExceeded = fmt.Errorf("%w: per-minute limit", ErrQuotaExceeded)
	ErrQuotaDayExceeded    = fmt.Errorf("%w: daily limit", ErrQuotaExceeded)
)
