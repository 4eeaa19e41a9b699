package cv

import (
	"strings"

	"techconnect-matcher/internal/skills"
)

const (
	maxSeedTokens       = 25
	maxSeedFragmentLen  = 48
	maxCommaListLineLen = 140
	maxKeywordLineLen   = 180
)

// skillKeywords mark lines likely to enumerate skills even outside a skills
// section.
var skillKeywords = []string{"skills", "beceri", "teknoloji"}

var fragmentSplitter = strings.NewReplacer("•", ",", "·", ",", " | ", ",", " - ", ",")

// ExtractSkillSeed gathers a bounded, normalized skill-seed list from the
// skills section plus any list-shaped or skill-keyword lines in the full
// text. The cap bounds both noise and downstream prompt size.
func ExtractSkillSeed(sections map[string]string, fullText string) []string {
	var candidates []string

	if skillsText := sections["skills"]; skillsText != "" {
		candidates = append(candidates, strings.Split(skillsText, "\n")...)
	}

	for _, line := range strings.Split(fullText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := normalizeHeading(line)

		if inline := DetectInlineHeading(line); inline != nil && inline.Key == "skills" && inline.Rest != "" {
			candidates = append(candidates, inline.Rest)
			continue
		}

		hasCommaList := strings.Contains(line, ",") && len(line) <= maxCommaListLineLen
		hasBulletList := strings.ContainsAny(line, "•·")
		hasPipeList := strings.Contains(line, " | ") && len(line) <= maxCommaListLineLen

		if mentionsSkillWord(lower) && len(line) <= maxKeywordLineLen {
			candidates = append(candidates, line)
		}

		if hasCommaList || hasBulletList || hasPipeList {
			if strings.Contains(line, "@") || strings.Contains(lower, "http") || strings.Contains(lower, "www") {
				continue
			}
			if len(strings.Split(line, ",")) >= 2 || hasBulletList || hasPipeList {
				candidates = append(candidates, line)
			}
		}
	}

	var rawTokens []string
	for _, c := range candidates {
		for _, p := range strings.Split(fragmentSplitter.Replace(c), ",") {
			tok := strings.TrimSpace(p)
			if tok == "" || len(tok) > maxSeedFragmentLen {
				continue
			}
			rawTokens = append(rawTokens, tok)
		}
	}

	normalized := make([]string, 0, len(rawTokens))
	for _, t := range rawTokens {
		if n := skills.Normalize(t); n != "" {
			normalized = append(normalized, n)
		}
	}
	normalized = skills.Dedupe(normalized)

	if len(normalized) > maxSeedTokens {
		normalized = normalized[:maxSeedTokens]
	}
	return normalized
}

func mentionsSkillWord(lower string) bool {
	for _, kw := range skillKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
