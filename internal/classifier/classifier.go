package classifier

import (
	"strings"

	"github.com/maxaizer/jobs-collector/internal/entities"
)

const (
	TitleKeywordScore = 3
	SkillScore        = 1
	// MinSignal is the lowest score that still assigns a category.
	MinSignal = 2
)

// Classify assigns exactly one taxonomy category. A trusted hint wins,
// otherwise the title and skills are scored against the taxonomy. Hints are
// trusted when the source kind has a label table or when the hint already
// names a taxonomy category.
func Classify(title string, skills entities.SkillSet, kind, hint string) entities.Category {
	if category, ok := categoryFromHint(kind, hint); ok {
		return category
	}

	scores := Score(title, skills)

	best, bestScore := entities.CategoryUncategorized, 0
	for _, category := range Priority {
		if scores[category] > bestScore {
			best, bestScore = category, scores[category]
		}
	}

	if bestScore < MinSignal {
		return entities.CategoryUncategorized
	}
	return best
}

// Score returns the keyword and skill overlap per category.
func Score(title string, skills entities.SkillSet) map[entities.Category]int {
	lowered := strings.ToLower(title)
	scores := make(map[entities.Category]int, len(taxonomy))

	for category, s := range taxonomy {
		for _, keyword := range s.titleKeywords {
			if containsKeyword(lowered, keyword) {
				scores[category] += TitleKeywordScore
			}
		}
		for _, skill := range s.skills {
			if skills.Contains(skill) {
				scores[category] += SkillScore
			}
		}
	}
	return scores
}

func categoryFromHint(kind, hint string) (entities.Category, bool) {
	if hint == "" {
		return "", false
	}
	table := sourceHints[kind]

	for _, part := range strings.Split(hint, ",") {
		label := strings.ToLower(strings.TrimSpace(part))
		if category, ok := table[label]; ok {
			return category, true
		}
		if category := entities.Category(label); isTaxonomyCategory(category) {
			return category, true
		}
	}
	return "", false
}

func isTaxonomyCategory(category entities.Category) bool {
	_, ok := taxonomy[category]
	return ok
}

// containsKeyword matches ASCII keywords on word boundaries so that "ai"
// does not fire inside "email". Hangul keywords match as substrings.
func containsKeyword(text, keyword string) bool {
	if !isASCII(keyword) {
		return strings.Contains(text, keyword)
	}

	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], keyword)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(keyword)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
