package skills

import "strings"

// turkishFold maps Turkish letters to their ASCII equivalents. Fixed table on
// purpose: normalization must not depend on locale state.
var turkishFold = strings.NewReplacer(
	"ı", "i",
	"İ", "i",
	"ş", "s",
	"Ş", "s",
	"ğ", "g",
	"Ğ", "g",
	"ü", "u",
	"Ü", "u",
	"ö", "o",
	"Ö", "o",
	"ç", "c",
	"Ç", "c",
)

// aliasTable resolves spelling variants to one canonical token. Multi-word
// compounds collapse to a single token so the vocabulary stays set-like.
var aliasTable = map[string]string{
	"c#":      "csharp",
	"c sharp": "csharp",
	"c-sharp": "csharp",

	"js":          "javascript",
	"java script": "javascript",

	"node":    "nodejs",
	"node.js": "nodejs",

	"express.js": "express",

	"ts": "typescript",

	"react js": "react",
	"react.js": "react",

	"next js":  "nextjs",
	"next.js":  "nextjs",

	"asp.net": "aspnet",
	"asp net": "aspnet",

	"dotnet": "dotnet",
	".net":   "dotnet",

	"firebase firestore": "firebase",
	"google firebase":    "firebase",

	"rest api":          "restapi",
	"rest-api":          "restapi",
	"restful api":       "restapi",
	"restful":           "restapi",
	"restful servisler": "restapi",
	"restful services":  "restapi",
	"restful servis":    "restapi",
	"rest servisleri":   "restapi",
	"rest servisler":    "restapi",

	"machine learning": "machinelearning",
	"deep learning":    "deeplearning",

	"spring boot":     "springboot",
	"react native":    "reactnative",
	"unit testing":    "unittesting",
	"test automation": "testautomation",
	"ci/cd":           "cicd",
	"ci cd":           "cicd",
}

var bulletGlyphs = strings.NewReplacer("•", " ", "·", " ")

// FoldTurkish applies the fixed diacritic fold table without further
// normalization. Heading detection shares it.
func FoldTurkish(s string) string {
	return turkishFold.Replace(s)
}

// Normalize canonicalizes one raw skill string into a vocabulary token.
// Returns "" when the input cannot yield a token. Idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	x := strings.ToLower(strings.TrimSpace(raw))
	if x == "" {
		return ""
	}

	x = turkishFold.Replace(x)
	x = collapseSpaces(x)
	x = bulletGlyphs.Replace(x)
	x = collapseSpaces(x)

	if alias, ok := aliasTable[x]; ok {
		x = alias
	}

	x = strings.ReplaceAll(x, ".", "")
	x = strings.ReplaceAll(x, "(", " ")
	x = strings.ReplaceAll(x, ")", " ")
	x = collapseSpaces(x)

	if len(x) < 2 {
		return ""
	}
	return x
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
