package cv

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	tabsRe       = regexp.MustCompile(`[ \t]+`)
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
	emailRe      = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phoneStrict  = regexp.MustCompile(`(\+?\d{1,3}[\s-]?)?(\(?\d{3}\)?[\s-]?)\d{3}[\s-]?\d{2}[\s-]?\d{2}`)
	phoneLoose   = regexp.MustCompile(`\+?\d[\d\s-]{8,}\d`)
)

// CleanText strips NUL bytes and carriage returns, collapses horizontal
// whitespace and squeezes blank-line runs.
func CleanText(t string) string {
	t = strings.ReplaceAll(t, "\x00", " ")
	t = tabsRe.ReplaceAllString(t, " ")
	t = strings.ReplaceAll(t, "\r", "")
	t = blankRunsRe.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}

// FirstEmail returns the first email-looking token in text, or "".
func FirstEmail(text string) string {
	return emailRe.FindString(text)
}

// FirstPhone returns the first phone-looking token in text, or "".
func FirstPhone(text string) string {
	if m := phoneStrict.FindString(text); m != "" {
		return m
	}
	return phoneLoose.FindString(text)
}

// CapString truncates s to at most n bytes.
func CapString(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ContentHash is the hex SHA-256 of raw document bytes, used for change and
// duplicate detection.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
