package dedup

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var postingNamespace = uuid.MustParse("0b6f8e3a-91c4-5d27-8a1e-4c3f2d9b7e60")

var compoundRoles = strings.NewReplacer(
	"back-end", "backend",
	"back end", "backend",
	"front-end", "frontend",
	"front end", "frontend",
	"full-stack", "fullstack",
	"full stack", "fullstack",
	"machine learning", "ml",
	"software engineer", "engineer",
	"software developer", "engineer",
)

// roleWords folds Korean and English role vocabulary onto one form.
var roleWords = map[string]string{
	"백엔드":        "backend",
	"프론트엔드":      "frontend",
	"프론트":        "frontend",
	"풀스택":        "fullstack",
	"서버":         "server",
	"개발자":        "engineer",
	"개발":         "engineer",
	"엔지니어":       "engineer",
	"developer":  "engineer",
	"dev":        "engineer",
	"programmer": "engineer",
	"프로그래머":      "engineer",
	"시니어":        "senior",
	"sr":         "senior",
	"주니어":        "junior",
	"jr":         "junior",
	"리드":         "lead",
	"안드로이드":      "android",
	"모바일":        "mobile",
	"데이터":        "data",
	"머신러닝":       "ml",
	"데브옵스":       "devops",
	"인프라":        "infra",
	"플랫폼":        "platform",
	"보안":         "security",
	"임베디드":       "embedded",
	"게임":         "game",
	"클라이언트":      "client",
	"웹":          "web",
	"앱":          "app",
	"소프트웨어":      "software",
	"sw":         "software",
	"매니저":        "manager",
}

// noiseWords carry no identity: hiring boilerplate and employment terms.
var noiseWords = map[string]struct{}{
	"채용": {}, "모집": {}, "구인": {}, "급구": {}, "정규직": {}, "계약직": {},
	"경력": {}, "경력직": {}, "신입": {}, "hiring": {}, "wanted": {}, "및": {},
}

var roleSuffixes = []string{"개발자", "엔지니어", "개발"}

// TitleKey normalizes a posting title so that the same role written by different
// sources compares equal, e.g. "백엔드 개발자" and "Backend Engineer".
func TitleKey(title string) string {
	text := compoundRoles.Replace(strings.ToLower(stripBrackets(title)))

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	words := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, token := range splitRoleSuffix(field) {
			if _, ok := noiseWords[token]; ok {
				continue
			}
			if folded, ok := roleWords[token]; ok {
				token = folded
			}
			if len(words) > 0 && words[len(words)-1] == token {
				continue
			}
			words = append(words, token)
		}
	}
	return strings.Join(words, " ")
}

// Fingerprint is the stable posting id over the normalized title, the company
// identity and the city-level region key.
func Fingerprint(title, companyID, regionKey string) string {
	key := TitleKey(title) + "\x1f" + companyID + "\x1f" + regionKey
	return uuid.NewSHA1(postingNamespace, []byte(key)).String()
}

func splitRoleSuffix(token string) []string {
	for _, suffix := range roleSuffixes {
		if token != suffix && strings.HasSuffix(token, suffix) {
			return append(splitRoleSuffix(strings.TrimSuffix(token, suffix)), suffix)
		}
	}
	return []string{token}
}

// stripBrackets drops bracketed prefixes and suffixes such as "[쿠팡]" or "(3년 이상)".
func stripBrackets(title string) string {
	var b strings.Builder
	depth := 0
	for _, r := range title {
		switch r {
		case '[', '(', '【':
			depth++
			b.WriteRune(' ')
		case ']', ')', '】':
			if depth > 0 {
				depth--
			}
			b.WriteRune(' ')
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
