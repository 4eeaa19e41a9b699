package cv

import (
	"strings"
)

// Quality flags, ordered here by reporting priority.
const (
	FlagGarbledText        = "GARBLED_TEXT"
	FlagNoContactFound     = "NO_CONTACT_FOUND"
	FlagNoSectionsDetected = "NO_SECTIONS_DETECTED"
	FlagTextTooShort       = "TEXT_TOO_SHORT"
	FlagVeryShortLines     = "VERY_SHORT_LINES"
	FlagManyShortLines     = "MANY_SHORT_LINES"
)

const (
	minTextLen          = 450
	manyLinesCount      = 260
	manyLinesAvgLen     = 14
	veryShortLinesCount = 140
	veryShortLinesAvg   = 10
	garbledRatioLimit   = 0.006
	badFlagThreshold    = 3
)

// reasonPriority selects the single best-explaining flag.
var reasonPriority = []string{
	FlagGarbledText,
	FlagNoContactFound,
	FlagNoSectionsDetected,
	FlagTextTooShort,
	FlagVeryShortLines,
	FlagManyShortLines,
}

// structuralSections are the section keys whose total absence flags a
// structureless document.
var structuralSections = []string{"skills", "experience", "education", "summary"}

// QualityMetrics are the measured inputs behind a quality verdict.
type QualityMetrics struct {
	TextLen      int      `json:"textLen"`
	LineCount    int      `json:"lineCount"`
	AvgLineLen   int      `json:"avgLineLen"`
	GarbledRatio float64  `json:"garbledRatio"`
	SectionKeys  []string `json:"sectionKeys"`
	HasEmail     bool     `json:"hasEmail"`
	HasPhone     bool     `json:"hasPhone"`
}

// Quality is the verdict of the gate that runs before any costly downstream
// work (AI calls, index writes).
type Quality struct {
	IsBad   bool           `json:"isBad"`
	Reason  string         `json:"reason"`
	Flags   []string       `json:"flags"`
	Metrics QualityMetrics `json:"metrics"`
}

// garbledRatio counts replacement/control glyphs over total length.
func garbledRatio(text string) float64 {
	if text == "" {
		return 1
	}

	count := 0
	for _, r := range text {
		if r == '�' || r == '□' {
			count++
		}
	}

	return float64(count) / float64(len([]rune(text)))
}

// EvaluateQuality scores the structural and textual health of extracted CV
// text. A document is bad iff it raises at least three flags.
func EvaluateQuality(text string, sections map[string]string, email, phone string) Quality {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	lineCount := len(lines)
	avgLineLen := 0
	if lineCount > 0 {
		total := 0
		for _, l := range lines {
			total += len(l)
		}
		avgLineLen = (total + lineCount/2) / lineCount
	}

	ratio := garbledRatio(text)

	sectionKeys := make([]string, 0, len(sections))
	for k := range sections {
		sectionKeys = append(sectionKeys, k)
	}

	hasStructural := false
	for _, key := range structuralSections {
		if _, ok := sections[key]; ok {
			hasStructural = true
			break
		}
	}

	hasEmail := strings.TrimSpace(email) != ""
	hasPhone := strings.TrimSpace(phone) != ""

	var flags []string
	if len(text) < minTextLen {
		flags = append(flags, FlagTextTooShort)
	}
	if lineCount >= manyLinesCount && avgLineLen <= manyLinesAvgLen {
		flags = append(flags, FlagManyShortLines)
	}
	if avgLineLen <= veryShortLinesAvg && lineCount >= veryShortLinesCount {
		flags = append(flags, FlagVeryShortLines)
	}
	if ratio >= garbledRatioLimit {
		flags = append(flags, FlagGarbledText)
	}
	if !hasEmail && !hasPhone {
		flags = append(flags, FlagNoContactFound)
	}
	if !hasStructural {
		flags = append(flags, FlagNoSectionsDetected)
	}

	reason := "UNKNOWN"
	if len(flags) > 0 {
		reason = flags[0]
	}
	for _, p := range reasonPriority {
		if contains(flags, p) {
			reason = p
			break
		}
	}

	return Quality{
		IsBad:  len(flags) >= badFlagThreshold,
		Reason: reason,
		Flags:  flags,
		Metrics: QualityMetrics{
			TextLen:      len(text),
			LineCount:    lineCount,
			AvgLineLen:   avgLineLen,
			GarbledRatio: ratio,
			SectionKeys:  sectionKeys,
			HasEmail:     hasEmail,
			HasPhone:     hasPhone,
		},
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
