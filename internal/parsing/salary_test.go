package parsing

import (
	"testing"

	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func Test_ParseSalary_KoreanRange(t *testing.T) {
	salary := ParseSalary("연봉 4,000~6,000만원")

	require.NotNil(t, salary)
	assert.Equal(t, &entities.ParsedSalary{
		Min:      int64Ptr(40000000),
		Max:      int64Ptr(60000000),
		Currency: entities.CurrencyKRW,
		Period:   entities.PeriodAnnual,
		Text:     "연봉 4,000~6,000만원",
	}, salary)
}

func Test_ParseSalary_Variants(t *testing.T) {
	tests := []struct {
		text     string
		min      *int64
		max      *int64
		currency string
		period   string
	}{
		{"3,000~3,500만원", int64Ptr(30000000), int64Ptr(35000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"2,400만원 ~ 3,000만원", int64Ptr(24000000), int64Ptr(30000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"연봉 5000만원 이상", int64Ptr(50000000), nil, entities.CurrencyKRW, entities.PeriodAnnual},
		{"~4000만원", nil, int64Ptr(40000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"연봉 1억 2천만원", int64Ptr(120000000), int64Ptr(120000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"1.5억", int64Ptr(150000000), int64Ptr(150000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"월 300만원", int64Ptr(36000000), int64Ptr(36000000), entities.CurrencyKRW, entities.PeriodMonthly},
		{"연봉 4000", int64Ptr(40000000), int64Ptr(40000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"$120k - $150k", int64Ptr(120000), int64Ptr(150000), entities.CurrencyUSD, entities.PeriodAnnual},
		{"$120,000 - $150,000 per year", int64Ptr(120000), int64Ptr(150000), entities.CurrencyUSD, entities.PeriodAnnual},
		{"USD 9,000 monthly", int64Ptr(108000), int64Ptr(108000), entities.CurrencyUSD, entities.PeriodMonthly},
		{"€60k+", int64Ptr(60000), nil, entities.CurrencyEUR, entities.PeriodAnnual},
		{"연봉 4,000만원 이상 (성과급 200%)", int64Ptr(40000000), nil, entities.CurrencyKRW, entities.PeriodAnnual},
		{"연봉 4000만원 (경력 3년 이상)", int64Ptr(40000000), int64Ptr(40000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"연봉 2,400만원 ~ 3,000만원 (월 200만원)", int64Ptr(24000000), int64Ptr(30000000), entities.CurrencyKRW, entities.PeriodAnnual},
		{"연봉 3000만원, 인센티브 500만원", int64Ptr(30000000), int64Ptr(30000000), entities.CurrencyKRW, entities.PeriodAnnual},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			salary := ParseSalary(tt.text)
			require.NotNil(t, salary)
			assert.Equal(t, tt.min, salary.Min)
			assert.Equal(t, tt.max, salary.Max)
			assert.Equal(t, tt.currency, salary.Currency)
			assert.Equal(t, tt.period, salary.Period)
			assert.Equal(t, tt.text, salary.Text)
		})
	}
}

func Test_ParseSalary_NoSignal_ReturnsNil(t *testing.T) {
	for _, text := range []string{"", "   ", "회사내규에 따름", "면접 후 결정", "연봉 협의", "competitive", "시급 12,000원", "4000-6000"} {
		assert.Nil(t, ParseSalary(text), text)
	}
}

func Test_ParseSalary_IsDeterministic(t *testing.T) {
	first := ParseSalary("연봉 3,500만원~")
	second := ParseSalary("연봉 3,500만원~")
	assert.Equal(t, first, second)
}
