package cv

import (
	"regexp"
	"strings"
	"unicode"

	"techconnect-matcher/internal/skills"
)

const (
	// SectionOther collects lines seen before the first recognized heading.
	SectionOther = "other"

	maxSectionChars    = 6000
	maxFullTextChars   = 200000
	maxInlineHeadChars = 45
	maxHeadingLineLen  = 70
)

// sectionAliases maps heading spellings (diacritic-folded, lowercase) onto
// canonical section keys. Order matters: first match wins.
var sectionAliases = []struct {
	key   string
	heads []string
}{
	{"summary", []string{"ozet", "ozetim", "profil", "hakkimda", "about", "summary", "profile", "professional summary"}},
	{"skills", []string{
		"beceriler", "yetenekler", "skills", "teknolojiler", "technologies", "technical skills",
		"teknik yetenekler", "teknik beceriler", "uzmanliklar", "skill set", "skillset",
	}},
	{"experience", []string{"deneyim", "is deneyimi", "work experience", "experience", "employment", "kariyer", "staj", "internship"}},
	{"education", []string{"egitim", "education", "akademik", "university", "universite", "lisans", "yuksek lisans"}},
	{"projects", []string{"projeler", "projelerim", "projects", "project experience", "personal projects"}},
	{"certificates", []string{"sertifikalar", "sertifika", "certifications", "certificates", "courses", "kurslar"}},
	{"languages", []string{"diller", "languages", "language"}},
	{"links", []string{"iletisim", "iletisim bilgileri", "contact", "links", "baglantilar", "linkedin", "github", "portfolio", "web sitesi"}},
}

var inlineHeadingRe = regexp.MustCompile(`^(.{2,45}?)(\s*[:\-—–|]\s*)(.+)$`)

// normalizeHeading folds a line for heading comparison: lowercase, diacritics
// folded, punctuation dropped.
func normalizeHeading(s string) string {
	folded := skills.FoldTurkish(strings.ToLower(s))

	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// DetectSectionKey resolves a line to a canonical section key, or "".
func DetectSectionKey(line string) string {
	n := normalizeHeading(line)
	if n == "" {
		return ""
	}

	for _, s := range sectionAliases {
		for _, h := range s.heads {
			if n == h || strings.HasPrefix(n, h+" ") || strings.Contains(n, " "+h+" ") {
				return s.key
			}
		}
	}
	return ""
}

// InlineHeading is a "Heading: content" line whose head clause resolves to a
// canonical section key.
type InlineHeading struct {
	Key  string
	Rest string
}

// DetectInlineHeading matches short "Heading: content" patterns.
func DetectInlineHeading(line string) *InlineHeading {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return nil
	}

	m := inlineHeadingRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	head := strings.TrimSpace(m[1])
	rest := strings.TrimSpace(m[3])
	if len(head) > maxInlineHeadChars {
		return nil
	}

	key := DetectSectionKey(head)
	if key == "" {
		return nil
	}

	return &InlineHeading{Key: key, Rest: rest}
}

// SplitSections scans the document line by line and groups content under
// detected headings. Lines before the first heading land in "other". Each
// section's text is capped.
func SplitSections(text string) map[string]string {
	sections := map[string][]string{}
	current := SectionOther

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if inline := DetectInlineHeading(line); inline != nil {
			current = inline.Key
			if inline.Rest != "" {
				sections[current] = append(sections[current], inline.Rest)
			}
			continue
		}

		if len(line) <= maxHeadingLineLen {
			if key := DetectSectionKey(line); key != "" {
				current = key
				if sections[current] == nil {
					sections[current] = []string{}
				}
				continue
			}
		}

		sections[current] = append(sections[current], line)
	}

	out := make(map[string]string, len(sections))
	for k, lines := range sections {
		joined := strings.TrimSpace(strings.Join(lines, "\n"))
		if joined != "" {
			out[k] = CapString(joined, maxSectionChars)
		}
	}

	return out
}
