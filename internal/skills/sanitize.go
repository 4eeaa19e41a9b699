package skills

import "strings"

const (
	maxTokenLen = 34
	maxWords    = 2
	minWordLen  = 2
	maxWordLen  = 16
)

// stopSkills are tokens too generic to discriminate between candidates. Used
// only when picking discovery seeds; eligibility still honors them because a
// stoplisted token may be a hard requirement.
var stopSkills = map[string]bool{
	"html":       true,
	"css":        true,
	"sql":        true,
	"office":     true,
	"word":       true,
	"excel":      true,
	"powerpoint": true,
}

// IsSkillShaped reports whether a normalized token looks like a real skill
// rather than a mis-captured sentence fragment.
func IsSkillShaped(norm string) bool {
	if norm == "" || len(norm) > maxTokenLen {
		return false
	}

	for _, r := range norm {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '+' || r == '#' || r == '/' || r == '-' || r == ' ':
		default:
			return false
		}
	}

	words := strings.Fields(norm)
	if len(words) > maxWords {
		return false
	}

	if len(words) == 2 {
		for _, w := range words {
			if len(w) < minWordLen || len(w) > maxWordLen {
				return false
			}
		}
	}

	return true
}

// SanitizeNormalized normalizes, deduplicates and shape-filters a raw skill
// list. The result is the only form eligibility logic may consume.
func SanitizeNormalized(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))

	for _, s := range raw {
		norm := Normalize(s)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		if IsSkillShaped(norm) {
			out = append(out, norm)
		}
	}

	return out
}

// Dedupe keeps the first occurrence of each non-empty token.
func Dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// PickDiscriminative selects up to max stoplist-filtered seeds for index
// discovery.
func PickDiscriminative(norm []string, max int) []string {
	out := make([]string, 0, max)
	for _, s := range norm {
		if s == "" || stopSkills[s] {
			continue
		}
		out = append(out, s)
		if len(out) >= max {
			break
		}
	}
	return out
}

// SeedCount scales the discovery seed budget with the requirement-set size.
func SeedCount(requiredLen int) int {
	switch {
	case requiredLen <= 4:
		return 3
	case requiredLen <= 8:
		return 5
	default:
		return 6
	}
}

// Effective merges manual and CV-derived skills into the sanitized union the
// match engine reads.
func Effective(manual, fromCv []string) []string {
	merged := make([]string, 0, len(manual)+len(fromCv))
	merged = append(merged, manual...)
	merged = append(merged, fromCv...)
	return SanitizeNormalized(merged)
}
