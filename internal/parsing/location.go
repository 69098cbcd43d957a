package parsing

import (
	"regexp"
	"strings"
)

const RemoteRegionKey = "remote"

type region struct {
	display string
	key     string
}

var regions = map[string]region{}

func init() {
	add := func(display, key string, aliases ...string) {
		r := region{display: display, key: key}
		regions[strings.ToLower(display)] = r
		regions[key] = r
		for _, alias := range aliases {
			regions[strings.ToLower(alias)] = r
		}
	}
	add("서울", "seoul", "서울시", "서울특별시")
	add("경기", "gyeonggi", "경기도", "gyeonggi-do", "판교", "pangyo", "성남", "seongnam")
	add("인천", "incheon", "인천시", "인천광역시")
	add("부산", "busan", "부산시", "부산광역시")
	add("대구", "daegu", "대구시", "대구광역시")
	add("대전", "daejeon", "대전시", "대전광역시")
	add("광주", "gwangju", "광주시", "광주광역시")
	add("울산", "ulsan", "울산시", "울산광역시")
	add("세종", "sejong", "세종시", "세종특별자치시")
	add("강원", "gangwon", "강원도", "강원특별자치도")
	add("충북", "chungbuk", "충청북도")
	add("충남", "chungnam", "충청남도")
	add("전북", "jeonbuk", "전라북도", "전북특별자치도")
	add("전남", "jeonnam", "전라남도")
	add("경북", "gyeongbuk", "경상북도")
	add("경남", "gyeongnam", "경상남도")
	add("제주", "jeju", "제주도", "제주특별자치도")
}

var (
	locationSeparators = regexp.MustCompile(`\s*(?:&gt;|>|·|\|)\s*`)
	locationNoise      = map[string]struct{}{
		"south": {}, "korea": {}, "republic": {}, "of": {}, "대한민국": {}, "한국": {}, "kr": {},
	}
	placelessLocations = []string{"remote", "anywhere", "원격", "재택", "worldwide", "전국"}
)

// NormalizeLocation returns a display form and a city-level key used for
// fingerprinting. Unknown places keep their text and use it as the key.
func NormalizeLocation(text string) (string, string) {
	cleaned := strings.TrimSpace(locationSeparators.ReplaceAllString(text, " "))
	if cleaned == "" {
		return "", ""
	}

	parts := strings.FieldsFunc(cleaned, func(r rune) bool { return r == ',' || r == '/' || r == ';' })
	for _, part := range parts {
		tokens := strings.Fields(part)
		if len(tokens) == 0 {
			continue
		}
		if r, ok := regions[strings.ToLower(tokens[0])]; ok {
			return strings.Join(append([]string{r.display}, tokens[1:]...), " "), r.key
		}
	}

	for _, part := range parts {
		if r, ok := regions[strings.ToLower(strings.TrimSpace(part))]; ok {
			return r.display, r.key
		}
	}

	lower := strings.ToLower(cleaned)
	for _, word := range placelessLocations {
		if strings.TrimSpace(lower) == word || strings.HasPrefix(lower, word+" ") {
			return "", ""
		}
	}

	tokens := make([]string, 0)
	for _, token := range strings.Fields(strings.Join(parts, " ")) {
		if _, noise := locationNoise[strings.ToLower(token)]; !noise {
			tokens = append(tokens, token)
		}
	}
	display := strings.Join(tokens, " ")
	return display, strings.ToLower(display)
}
