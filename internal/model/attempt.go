package model

import "time"

const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
	AttemptExpired    = "expired"
)

// swagger:model Attempt
type Attempt struct {
	UUIDBase

	QuizID    string `gorm:"index:idx_attempt_quiz_student,priority:1;uniqueIndex:uniq_attempt_number,priority:1;type:varchar(36)" json:"quizId"`
	StudentID uint   `gorm:"index:idx_attempt_quiz_student,priority:2;uniqueIndex:uniq_attempt_number,priority:2;type:bigint unsigned" json:"studentId"`
	// AttemptNumber 从 1 递增，(quiz, student, number) 唯一，
	// 作为并发创建时次数上限的持久防线
	AttemptNumber int `gorm:"not null;uniqueIndex:uniq_attempt_number,priority:3" json:"attemptNumber"`

	Status    string     `gorm:"size:20;default:'in_progress';index" json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	// 仅在 completed 后填充
	TotalScore       int  `json:"totalScore"`
	MaxScore         int  `json:"maxScore"`
	PercentageScore  int  `json:"percentageScore"`
	Passed           bool `gorm:"default:false" json:"passed"`
	NeedsReview      bool `gorm:"default:false" json:"needsReview"`
	TimeSpentSeconds int  `json:"timeSpentSeconds"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// IsFinished 终止状态的尝试不允许再被提交
func (a *Attempt) IsFinished() bool {
	return a.Status == AttemptCompleted || a.Status == AttemptExpired
}
