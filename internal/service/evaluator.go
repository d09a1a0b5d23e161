package service

import (
	"strings"

	"exam_engine_backend/internal/model"
)

// SubmittedAnswer 学生对单题的作答载荷
type SubmittedAnswer struct {
	QuestionID       string `json:"questionId" binding:"required"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	TextAnswer       string `json:"textAnswer,omitempty"`
	TimeSpentSeconds int    `json:"timeSpentSeconds,omitempty"`
}

// EvalResult 单题判分结果
type EvalResult struct {
	IsCorrect    bool
	PointsEarned int
	NeedsReview  bool
}

// EvaluateAnswer 按题型对一份作答判分。纯函数，不触达存储，
// 任何畸形输入（缺答案、未知题型、选项缺失）都降级为 0 分而不是报错，
// 保证单题异常不会中断整卷判分。
func EvaluateAnswer(q *model.Question, sub SubmittedAnswer) EvalResult {
	switch q.QuestionType {
	case model.QuestionMultipleChoice, model.QuestionTrueFalse, model.QuestionMatchOrdering:
		return evaluateChoice(q, sub.SelectedOptionID)
	case model.QuestionShortText:
		return evaluateShortText(q, sub.TextAnswer)
	case model.QuestionTextAssignment, model.QuestionFileAssignment,
		model.QuestionVideoRecording, model.QuestionAudioRecording:
		// 人工评分题型不自动判分，标记待批改
		return EvalResult{NeedsReview: true}
	}
	return EvalResult{}
}

// evaluateChoice 单选语义：以第一个标记正确的选项为准，按选项ID精确比对，
// 答对得满分，否则 0 分，无部分给分
func evaluateChoice(q *model.Question, selectedOptionID string) EvalResult {
	correct := q.CorrectOption()
	if correct == nil || selectedOptionID == "" {
		return EvalResult{}
	}
	if selectedOptionID != correct.ID {
		return EvalResult{}
	}
	return EvalResult{IsCorrect: true, PointsEarned: q.EffectivePoints()}
}

// evaluateShortText 标准答案与作答各自去首尾空白并做大小写折叠后精确比对，
// 不做模糊匹配
func evaluateShortText(q *model.Question, textAnswer string) EvalResult {
	correct := q.CorrectOption()
	if correct == nil || strings.TrimSpace(textAnswer) == "" {
		return EvalResult{}
	}
	if normalizeText(textAnswer) != normalizeText(correct.Text) {
		return EvalResult{}
	}
	return EvalResult{IsCorrect: true, PointsEarned: q.EffectivePoints()}
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
