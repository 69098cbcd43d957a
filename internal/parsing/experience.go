package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/maxaizer/jobs-collector/internal/entities"
)

var (
	yearsRangePattern = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:년|yrs?|years?)?\s*(?:~|-|–|〜|to)\s*(\d{1,2})\s*(?:년|yrs?|years?)`)
	yearsUpperPattern = regexp.MustCompile(`(?i)(?:up to\s*(\d{1,2})\s*(?:yrs?|years?))|(?:(\d{1,2})\s*년\s*(?:이하|미만))`)
	yearsLowerPattern = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*(?:년|yrs?|years?)`)
)

var (
	newcomerWords = []string{"신입", "entry", "new grad", "newcomer", "graduate", "인턴", "intern", "no experience"}
	anyWords      = []string{"무관", "관계없음", "regardless", "any level", "all levels"}
	seniorWords   = []string{"시니어", "senior", "lead", "리드", "principal", "staff", "수석", "책임"}
	juniorWords   = []string{"주니어", "junior"}
	midWords      = []string{"미들", "mid-level", "middle", "intermediate"}
)

// ParseExperience never fails: unrecognized text maps to LevelAny with the text kept.
func ParseExperience(text string) entities.ParsedExperience {
	trimmed := strings.TrimSpace(text)
	result := entities.ParsedExperience{Level: entities.LevelAny, Text: trimmed}
	if trimmed == "" {
		return result
	}
	lower := strings.ToLower(trimmed)
	newcomer := containsWord(lower, newcomerWords...)

	if containsWord(lower, anyWords...) || (newcomer && strings.Contains(lower, "경력")) {
		result.MinYears = intPtr(0)
		return result
	}

	if m := yearsRangePattern.FindStringSubmatch(lower); m != nil {
		low, _ := strconv.Atoi(m[1])
		high, _ := strconv.Atoi(m[2])
		if low > high {
			low, high = high, low
		}
		result.MinYears, result.MaxYears = intPtr(low), intPtr(high)
		result.Level = levelForYears(low)
		return result
	}

	if loc := yearsUpperPattern.FindStringSubmatchIndex(lower); loc != nil {
		m := yearsUpperPattern.FindStringSubmatch(lower)
		high, _ := strconv.Atoi(firstNonEmpty(m[1], m[2]))
		result.MinYears, result.MaxYears = intPtr(0), intPtr(high)
		if high <= 1 {
			result.Level = entities.LevelEntry
		} else {
			result.Level = entities.LevelJunior
		}

		// "1년 이상 ~ 5년 이하" states the lower bound before the upper one
		if lm := yearsLowerPattern.FindStringSubmatch(lower[:loc[0]]); lm != nil {
			low, _ := strconv.Atoi(lm[1])
			if low <= high {
				result.MinYears = intPtr(low)
				result.Level = levelForYears(low)
			}
		}
		return result
	}

	if m := yearsLowerPattern.FindStringSubmatch(lower); m != nil {
		low, _ := strconv.Atoi(m[1])
		result.MinYears = intPtr(low)
		result.Level = levelForYears(low)
		return result
	}

	switch {
	case newcomer:
		result.Level = entities.LevelEntry
		result.MinYears, result.MaxYears = intPtr(0), intPtr(0)
	case containsWord(lower, seniorWords...):
		result.Level = entities.LevelSenior
	case containsWord(lower, juniorWords...):
		result.Level = entities.LevelJunior
	case containsWord(lower, midWords...):
		result.Level = entities.LevelMid
	case strings.Contains(lower, "경력"):
		// bare "경력" asks for prior experience without saying how much
		result.MinYears = intPtr(1)
	}
	return result
}

func levelForYears(minYears int) entities.ExperienceLevel {
	switch {
	case minYears <= 0:
		return entities.LevelEntry
	case minYears <= 2:
		return entities.LevelJunior
	case minYears <= 6:
		return entities.LevelMid
	default:
		return entities.LevelSenior
	}
}

// containsWord matches ASCII words on word boundaries so that "intern" does
// not fire inside "international". Hangul words match as substrings.
func containsWord(text string, words ...string) bool {
	for _, word := range words {
		if hasWord(text, word) {
			return true
		}
	}
	return false
}

func hasWord(text, word string) bool {
	if !isASCIIText(word) {
		return strings.Contains(text, word)
	}

	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isASCIIText(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || isASCIILetter(b)
}

func intPtr(v int) *int {
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
