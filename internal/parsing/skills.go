package parsing

import (
	_ "embed"
	"os"
	"strings"
	"unicode"

	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed skills.yaml
var defaultVocabulary []byte

const maxPhraseTokens = 3

// Vocabulary is the closed set of canonical skills. Keys of both indexes are
// token sequences joined by a single space.
type Vocabulary struct {
	variants  map[string]string
	ambiguous map[string]string
}

type vocabularyFile struct {
	Skills []struct {
		Canonical string   `yaml:"canonical"`
		Variants  []string `yaml:"variants"`
		Ambiguous []string `yaml:"ambiguous"`
	} `yaml:"skills"`
}

func DefaultVocabulary() *Vocabulary {
	vocabulary, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(errors.Wrap(err, "embedded skill vocabulary"))
	}
	return vocabulary
}

func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read vocabulary %s", path)
	}
	return ParseVocabulary(data)
}

func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse vocabulary")
	}

	v := &Vocabulary{variants: make(map[string]string), ambiguous: make(map[string]string)}
	for _, entry := range file.Skills {
		if entry.Canonical == "" {
			return nil, errors.New("vocabulary entry without canonical name")
		}
		for _, variant := range entry.Ambiguous {
			v.ambiguous[phraseKey(variant)] = entry.Canonical
		}
		if _, ok := v.ambiguous[phraseKey(entry.Canonical)]; !ok {
			v.variants[phraseKey(entry.Canonical)] = entry.Canonical
		}
		for _, variant := range entry.Variants {
			v.variants[phraseKey(variant)] = entry.Canonical
		}
	}
	return v, nil
}

// ExtractSkills matches free text and explicit skill lists against the vocabulary.
// Short ambiguous aliases such as "go" count only when they come from a list.
func (v *Vocabulary) ExtractSkills(text string, list []string) entities.SkillSet {
	var found []string

	for _, item := range list {
		key := phraseKey(item)
		if canonical, ok := v.lookup(key, true); ok {
			found = append(found, canonical)
			continue
		}
		found = append(found, v.scan(tokenize(item), true)...)
	}

	found = append(found, v.scan(tokenize(text), false)...)
	return entities.NewSkillSet(found...)
}

func (v *Vocabulary) lookup(key string, allowAmbiguous bool) (string, bool) {
	if canonical, ok := v.variants[key]; ok {
		return canonical, true
	}
	if allowAmbiguous {
		canonical, ok := v.ambiguous[key]
		return canonical, ok
	}
	return "", false
}

// scan prefers the longest phrase starting at each token.
func (v *Vocabulary) scan(tokens []string, allowAmbiguous bool) []string {
	var found []string
	for i := 0; i < len(tokens); {
		matched := 0
		for n := min(maxPhraseTokens, len(tokens)-i); n > 0; n-- {
			if canonical, ok := v.lookup(strings.Join(tokens[i:i+n], " "), allowAmbiguous); ok {
				found = append(found, canonical)
				matched = n
				break
			}
		}
		if matched == 0 {
			if canonical, ok := v.lookup(stripParticle(tokens[i]), allowAmbiguous); ok {
				found = append(found, canonical)
			}
			matched = 1
		}
		i += matched
	}
	return found
}

func phraseKey(text string) string {
	return strings.Join(tokenize(text), " ")
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, part := range splitScripts(field) {
			part = strings.TrimRight(part, ".")
			if part != "" {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

// splitScripts separates "typescript와" into "typescript" and "와".
func splitScripts(field string) []string {
	var parts []string
	start := 0
	var prevHangul bool
	for i, r := range field {
		hangul := unicode.Is(unicode.Hangul, r)
		if i > 0 && hangul != prevHangul {
			parts = append(parts, field[start:i])
			start = i
		}
		prevHangul = hangul
	}
	return append(parts, field[start:])
}

var particles = []string{"으로", "에서", "를", "을", "와", "과", "이", "가", "는", "은", "로", "의", "도", "및"}

func stripParticle(token string) string {
	for _, particle := range particles {
		if strings.HasSuffix(token, particle) && len(token) > len(particle) {
			return strings.TrimSuffix(token, particle)
		}
	}
	return token
}
