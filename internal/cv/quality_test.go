package cv

import (
	"strings"
	"testing"
)

func TestEvaluateQualityShortNoContactNoSections(t *testing.T) {
	q := EvaluateQuality(strings.Repeat("x", 100), nil, "", "")

	if !q.IsBad {
		t.Fatalf("expected bad verdict, flags = %v", q.Flags)
	}
	if q.Reason != FlagNoContactFound {
		t.Errorf("reason = %q, want %q by priority", q.Reason, FlagNoContactFound)
	}
}

func TestEvaluateQualityGoodDocument(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("A reasonably long line describing professional experience in detail.\n")
	}

	sections := map[string]string{"skills": "go", "experience": "x"}
	q := EvaluateQuality(b.String(), sections, "a@b.com", "")

	if q.IsBad {
		t.Errorf("expected good verdict, flags = %v", q.Flags)
	}
}

func TestEvaluateQualityGarbledPriority(t *testing.T) {
	// Garbled, short, no contact, no sections: four flags, garbled wins.
	text := strings.Repeat("�", 10) + strings.Repeat("a", 90)
	q := EvaluateQuality(text, nil, "", "")

	if !q.IsBad {
		t.Fatalf("expected bad verdict, flags = %v", q.Flags)
	}
	if q.Reason != FlagGarbledText {
		t.Errorf("reason = %q, want %q", q.Reason, FlagGarbledText)
	}
}

func TestEvaluateQualityTwoFlagsNotBad(t *testing.T) {
	// Short and no sections, but contact info present: two flags only.
	q := EvaluateQuality(strings.Repeat("x", 100), nil, "a@b.com", "")

	if q.IsBad {
		t.Errorf("two flags should not be bad, flags = %v", q.Flags)
	}
	if q.Reason != FlagNoSectionsDetected {
		t.Errorf("reason = %q, want %q", q.Reason, FlagNoSectionsDetected)
	}
}

func TestEvaluateQualityManyShortLines(t *testing.T) {
	text := strings.TrimRight(strings.Repeat("short line\n", 300), "\n")
	q := EvaluateQuality(text, map[string]string{"skills": "go"}, "a@b.com", "")

	if !contains(q.Flags, FlagManyShortLines) {
		t.Errorf("flags = %v, want %s", q.Flags, FlagManyShortLines)
	}
	if !contains(q.Flags, FlagVeryShortLines) {
		t.Errorf("flags = %v, want %s", q.Flags, FlagVeryShortLines)
	}
}

func TestCleanText(t *testing.T) {
	in := "a\x00b\t\tc\r\n\n\n\n\nd"
	got := CleanText(in)
	want := "a b c\n\nd"

	if got != want {
		t.Errorf("CleanText(%q) = %q, want %q", in, got, want)
	}
}

func TestContactPickers(t *testing.T) {
	text := "İletişim: mert.ozgokceler@example.com / +90 532 123 45 67"

	if got := FirstEmail(text); got != "mert.ozgokceler@example.com" {
		t.Errorf("FirstEmail = %q", got)
	}
	if got := FirstPhone(text); got == "" {
		t.Error("FirstPhone found nothing")
	}
}

func TestContentHashStable(t *testing.T) {
	a := ContentHash([]byte("abc"))
	b := ContentHash([]byte("abc"))
	c := ContentHash([]byte("abd"))

	if a != b {
		t.Error("hash not deterministic")
	}
	if a == c {
		t.Error("hash collision on different content")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
