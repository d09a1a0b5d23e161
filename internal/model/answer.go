package model

const (
	ReviewNone    = ""
	ReviewPending = "pending_review"
	ReviewGraded  = "graded"
)

// Answer 一次提交中单题的作答与判分结果，创建后不再修改
// （人工评分只更新 ReviewStatus/PointsEarned/IsCorrect）
// swagger:model Answer
type Answer struct {
	UUIDBase

	AttemptID  string `gorm:"index;type:varchar(36)" json:"attemptId"`
	QuestionID string `gorm:"index;type:varchar(36)" json:"questionId"`

	SelectedOptionID string `gorm:"type:varchar(36)" json:"selectedOptionId,omitempty"`
	TextAnswer       string `gorm:"type:text" json:"textAnswer,omitempty"`

	IsCorrect        bool   `gorm:"default:false" json:"isCorrect"`
	PointsEarned     int    `json:"pointsEarned"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	ReviewStatus     string `gorm:"size:20;default:''" json:"reviewStatus,omitempty"`

	GraderID      uint   `gorm:"type:bigint unsigned" json:"graderId,omitempty"`
	GraderComment string `gorm:"type:text" json:"graderComment,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}
