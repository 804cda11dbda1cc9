package answering

import (
	"slices"
	"strings"

	"github.com/abhisek/surveysim/internal/survey"
)

// DefaultKeywords is used when no vocabulary term matches.
const DefaultKeywords = "생활 만족도"

const maxKeywordTags = 3

// keywordVocabulary maps question terms to the canonical tags the
// statistics index is keyed by. Order matters: tags are emitted in
// vocabulary order for each question.
var keywordVocabulary = []struct {
	tag   string
	terms []string
}{
	{"만족도", []string{"만족", "satisf"}},
	{"직장", []string{"직장", "회사", "workplace", "company", "employer"}},
	{"임금", []string{"임금", "급여", "wage", "salary", "pay"}},
	{"근로", []string{"근로", "일", "work", "labor", "labour", "job"}},
	{"생활", []string{"생활", "life", "living"}},
	{"학교", []string{"학교", "school"}},
}

// ExtractKeywords derives a retrieval query from the first sample
// questions: matched tags in first-seen order, at most three, or
// DefaultKeywords when nothing matches.
func ExtractKeywords(qs []survey.FlattenedQuestion, sample int) string {
	if sample > 0 && len(qs) > sample {
		qs = qs[:sample]
	}

	var tags []string
	for _, q := range qs {
		text := strings.ToLower(q.Text)
		for _, v := range keywordVocabulary {
			if slices.Contains(tags, v.tag) {
				continue
			}
			for _, term := range v.terms {
				if strings.Contains(text, term) {
					tags = append(tags, v.tag)
					break
				}
			}
		}
	}

	if len(tags) == 0 {
		return DefaultKeywords
	}
	if len(tags) > maxKeywordTags {
		tags = tags[:maxKeywordTags]
	}
	return strings.Join(tags, " ")
}
