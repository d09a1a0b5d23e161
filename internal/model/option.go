package model

// swagger:model Option
type Option struct {
	UUIDBase

	QuestionID string `gorm:"index;type:varchar(36)" json:"questionId"`
	Text       string `gorm:"type:text" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

func (Option) TableName() string {
	return "options"
}
