package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/maxaizer/jobs-collector/internal/entities"
)

var (
	amountPattern  = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(억|천만|백만|만|천|[kKmM])?`)
	rangeSeparator = regexp.MustCompile(`(?i)^\s*(원|달러)?\s*(~|-|–|〜|～|to)\s*(\$|€|₩|usd|eur|krw)?\s*$`)
	annualPattern  = regexp.MustCompile(`(?i)연봉|annual|yearly|per year|/\s*y(ea)?r\b`)
	monthlyPattern = regexp.MustCompile(`(?i)(^|[^\d\s]\s*|\s)월\s*(급|봉)?\s*\d|월급|월봉|monthly|per month|/\s*mo(nth)?\b`)
	hourlyPattern  = regexp.MustCompile(`(?i)시급|hourly|per hour|/\s*h(ou)?r\b`)
)

var unitMultipliers = map[string]float64{
	"억":  1e8,
	"천만": 1e7,
	"백만": 1e6,
	"만":  1e4,
	"천":  1e3,
	"k":  1e3,
	"m":  1e6,
}

type amount struct {
	value    float64
	unit     string
	start    int
	end      int
	combined bool
}

// ParseSalary returns nil when text carries no usable salary figure.
func ParseSalary(text string) *entities.ParsedSalary {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || hourlyPattern.MatchString(trimmed) {
		return nil
	}

	currency := detectCurrency(trimmed)
	if currency == "" {
		return nil
	}

	amounts := scanAmounts(trimmed)
	if len(amounts) == 0 {
		return nil
	}

	bounds := amounts[:1]
	if len(amounts) > 1 && rangeSeparator.MatchString(trimmed[amounts[0].end:amounts[1].start]) {
		bounds = amounts[:2]
	}

	values := make([]int64, 0, 2)
	for _, a := range bounds {
		value := a.value
		if a.unit == "" && currency == entities.CurrencyKRW && value < 100000 {
			// bare "연봉 4000" is quoted in 만원
			value *= 1e4
		}
		values = append(values, int64(math.Round(value)))
	}

	salary := &entities.ParsedSalary{Currency: currency, Period: entities.PeriodAnnual, Text: trimmed}
	if !annualPattern.MatchString(trimmed) && monthlyPattern.MatchString(trimmed) {
		salary.Period = entities.PeriodMonthly
		for i := range values {
			values[i] *= 12
		}
	}

	if len(values) == 2 {
		low, high := values[0], values[1]
		if low > high {
			low, high = high, low
		}
		salary.Min, salary.Max = &low, &high
		return salary
	}

	value := values[0]
	before := trimmed[:amounts[0].start]
	after := qualifierAfter(trimmed, amounts)
	switch {
	case containsAny(after, "이하", "까지") || containsAny(before, "up to", "max", "~"):
		salary.Max = &value
	case containsAny(after, "이상", "+", "~") || containsAny(before, "from", "min"):
		salary.Min = &value
	default:
		low, high := value, value
		salary.Min, salary.Max = &low, &high
	}
	return salary
}

// qualifierAfter returns the text following the first amount up to the next
// amount or an opening parenthesis, where 이상 and 이하 attach to it.
func qualifierAfter(text string, amounts []amount) string {
	limit := len(text)
	if len(amounts) > 1 {
		limit = amounts[1].start
	}
	after := text[amounts[0].end:limit]
	if i := strings.IndexAny(after, "(（"); i >= 0 {
		after = after[:i]
	}
	return after
}

func detectCurrency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "$") || strings.Contains(lower, "usd") || strings.Contains(lower, "달러"):
		return entities.CurrencyUSD
	case strings.Contains(lower, "€") || strings.Contains(lower, "eur"):
		return entities.CurrencyEUR
	case containsAny(lower, "원", "₩", "krw", "만", "억", "연봉", "급여", "월급"):
		return entities.CurrencyKRW
	}
	return ""
}

func scanAmounts(text string) []amount {
	matches := amountPattern.FindAllStringSubmatchIndex(text, -1)
	amounts := make([]amount, 0, len(matches))

	for _, m := range matches {
		digits := strings.TrimRight(strings.ReplaceAll(text[m[2]:m[3]], ",", ""), ".")
		value, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}

		unit := ""
		if m[4] >= 0 {
			unit = strings.ToLower(text[m[4]:m[5]])
			if (unit == "k" || unit == "m") && m[5] < len(text) && isASCIILetter(text[m[5]]) {
				unit = ""
			}
		}
		if multiplier, ok := unitMultipliers[unit]; ok {
			value *= multiplier
		}
		amounts = append(amounts, amount{value: value, unit: unit, start: m[0], end: m[1]})
	}

	amounts = combineCompound(text, amounts)
	inheritRangeUnits(text, amounts)
	return amounts
}

// combineCompound folds "1억 2천만" into a single amount.
func combineCompound(text string, amounts []amount) []amount {
	result := make([]amount, 0, len(amounts))
	for i := 0; i < len(amounts); i++ {
		current := amounts[i]
		if current.unit == "억" && i+1 < len(amounts) {
			next := amounts[i+1]
			gap := strings.TrimSpace(text[current.end:next.start])
			if gap == "" && next.unit != "억" && next.unit != "" && next.value < 1e8 {
				current.value += next.value
				current.end = next.end
				current.combined = true
				i++
			}
		}
		result = append(result, current)
	}
	return result
}

// inheritRangeUnits applies the trailing unit of "4,000~6,000만원" to the bare lower bound.
func inheritRangeUnits(text string, amounts []amount) {
	for i := 0; i+1 < len(amounts); i++ {
		if amounts[i].unit != "" || amounts[i+1].unit == "" {
			continue
		}
		if !rangeSeparator.MatchString(text[amounts[i].end:amounts[i+1].start]) {
			continue
		}
		amounts[i].unit = amounts[i+1].unit
		amounts[i].value *= unitMultipliers[amounts[i+1].unit]
	}
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func containsAny(text string, needles ...string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
