package model

import "time"

// DefaultPassingScorePercent 未显式设置及格线时的默认值
const DefaultPassingScorePercent = 70

// swagger:model Quiz
type Quiz struct {
	UUIDBase

	LessonID            string     `gorm:"index;type:varchar(36)" json:"lessonId"`
	CreatorID           uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title               string     `gorm:"size:255;not null" json:"title"`
	Description         string     `gorm:"type:text" json:"description"`
	TimeLimitMinutes    int        `gorm:"default:0" json:"timeLimitMinutes"` // 0 表示不限时
	MaxAttempts         int        `gorm:"default:0" json:"maxAttempts"`      // 0 表示不限次数
	PassingScorePercent int        `gorm:"default:70" json:"passingScorePercent"`
	IsPublished         bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt         *time.Time `json:"publishedAt,omitempty"`

	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// EffectivePassingScore 返回生效的及格百分比
func (q *Quiz) EffectivePassingScore() int {
	if q.PassingScorePercent <= 0 || q.PassingScorePercent > 100 {
		return DefaultPassingScorePercent
	}
	return q.PassingScorePercent
}
