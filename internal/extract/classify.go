package extract

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Category labels used in output file names.
const (
	CategoryMusic   = "music"
	CategoryAmbient = "ambient"
	CategoryDemo    = "demo"
	CategoryVoice   = "voice"
	CategoryAudio   = "audio"
)

// keywordCategories is checked in order; the first keyword contained in the
// base name wins.
var keywordCategories = []struct {
	keyword  string
	category string
}{
	{"bgm", CategoryMusic},
	{"amb", CategoryAmbient},
	{"demo", CategoryDemo},
	{"voice", CategoryVoice},
}

// Classify infers a category from keywords in base. Matching is case-folded.
func Classify(base string) string {
	folded := cases.Fold().String(base)
	for _, kc := range keywordCategories {
		if strings.Contains(folded, kc.keyword) {
			return kc.category
		}
	}
	return CategoryAudio
}

// FileName builds "<base>_<NN>_<category>.ac3" for the 1-based index.
func FileName(base string, index int, category string) string {
	return fmt.Sprintf("%s_%02d_%s.ac3", base, index, category)
}
