package model

import "errors"

// 题目结构性错误：目录数据不满足题型约束时返回，判分侧绝不静默修复
var (
	ErrNoOptions       = errors.New("choice question has no options")
	ErrNoCorrectOption = errors.New("question has no option marked correct")
	ErrTrueFalseShape  = errors.New("true_false question must have exactly 2 options")
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortText      = "short_text"
	QuestionTextAssignment = "text_assignment"
	QuestionFileAssignment = "file_assignment"
	QuestionMatchOrdering  = "match_ordering"
	QuestionVideoRecording = "video_recording"
	QuestionAudioRecording = "audio_recording"
)

// swagger:model Question
type Question struct {
	UUIDBase

	QuizID       string `gorm:"index;type:varchar(36)" json:"quizId"`
	QuestionType string `gorm:"size:50;not null" json:"questionType"`
	Text         string `gorm:"type:text" json:"text"`
	Points       int    `gorm:"default:1" json:"points"`
	OrderIndex   int    `gorm:"default:0" json:"orderIndex"`
	IsRequired   bool   `gorm:"default:false" json:"isRequired"`
	ImageURL     string `gorm:"size:512" json:"imageUrl"` // 评分时不解析，仅透传
	VideoURL     string `gorm:"size:512" json:"videoUrl"`
	Explanation  string `gorm:"type:text" json:"explanation"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// HasOptions 该题型是否依赖选项列表
func (q *Question) HasOptions() bool {
	switch q.QuestionType {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionMatchOrdering:
		return true
	}
	return false
}

// IsManuallyGraded 该题型是否只能人工评分
func (q *Question) IsManuallyGraded() bool {
	switch q.QuestionType {
	case QuestionTextAssignment, QuestionFileAssignment, QuestionVideoRecording, QuestionAudioRecording:
		return true
	}
	return false
}

// EffectivePoints 题目计入总分的分值，非正数按 1 分处理
func (q *Question) EffectivePoints() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// ValidateStructure 校验题目的结构性约束
func (q *Question) ValidateStructure() error {
	if !q.HasOptions() {
		return nil
	}
	if len(q.Options) == 0 {
		return ErrNoOptions
	}
	if q.QuestionType == QuestionTrueFalse && len(q.Options) != 2 {
		return ErrTrueFalseShape
	}
	if q.CorrectOption() == nil {
		return ErrNoCorrectOption
	}
	return nil
}

// CorrectOption 返回第一个标记为正确的选项（按 orderIndex 顺序）
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}
