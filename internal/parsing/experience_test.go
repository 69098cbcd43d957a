package parsing

import (
	"testing"

	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/stretchr/testify/assert"
)

func Test_ParseExperience_NewcomerOrCareerAny(t *testing.T) {
	experience := ParseExperience("신입/경력 무관")

	assert.Equal(t, entities.LevelAny, experience.Level)
	assert.Equal(t, intPtr(0), experience.MinYears)
	assert.Nil(t, experience.MaxYears)
	assert.Equal(t, "신입/경력 무관", experience.Text)
}

func Test_ParseExperience_Variants(t *testing.T) {
	tests := []struct {
		text  string
		level entities.ExperienceLevel
		min   *int
		max   *int
	}{
		{"신입", entities.LevelEntry, intPtr(0), intPtr(0)},
		{"경력무관", entities.LevelAny, intPtr(0), nil},
		{"신입·경력", entities.LevelAny, intPtr(0), nil},
		{"경력 3~5년", entities.LevelMid, intPtr(3), intPtr(5)},
		{"경력 1~3년", entities.LevelJunior, intPtr(1), intPtr(3)},
		{"경력 5년 이상", entities.LevelMid, intPtr(5), nil},
		{"경력 10년↑", entities.LevelSenior, intPtr(10), nil},
		{"3+ years of experience", entities.LevelMid, intPtr(3), nil},
		{"2-4 years", entities.LevelJunior, intPtr(2), intPtr(4)},
		{"경력 2년 이하", entities.LevelJunior, intPtr(0), intPtr(2)},
		{"Senior", entities.LevelSenior, nil, nil},
		{"주니어", entities.LevelJunior, nil, nil},
		{"경력", entities.LevelAny, intPtr(1), nil},
		{"1년 이상 ~ 5년 이하", entities.LevelJunior, intPtr(1), intPtr(5)},
		{"경력 3년 이상 7년 이하", entities.LevelMid, intPtr(3), intPtr(7)},
		{"Team Lead", entities.LevelSenior, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			experience := ParseExperience(tt.text)
			assert.Equal(t, tt.level, experience.Level)
			assert.Equal(t, tt.min, experience.MinYears)
			assert.Equal(t, tt.max, experience.MaxYears)
		})
	}
}

func Test_ParseExperience_Unrecognized_KeepsText(t *testing.T) {
	experience := ParseExperience("협의 후 결정")

	assert.Equal(t, entities.LevelAny, experience.Level)
	assert.Nil(t, experience.MinYears)
	assert.Nil(t, experience.MaxYears)
	assert.Equal(t, "협의 후 결정", experience.Text)
	assert.True(t, experience.IsUnknown())
}

func Test_ParseExperience_LevelWordInsideLongerWord_NotMatched(t *testing.T) {
	for _, text := range []string{"international team", "leadership skills", "staffing agency"} {
		experience := ParseExperience(text)
		assert.Equal(t, entities.LevelAny, experience.Level, text)
		assert.Nil(t, experience.MinYears, text)
		assert.Nil(t, experience.MaxYears, text)
	}
}
