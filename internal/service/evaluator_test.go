package service

import (
	"testing"

	"exam_engine_backend/internal/model"
)

func choiceQuestion(qType string, points int, optionIDs []string, correctIdx int) *model.Question {
	q := &model.Question{QuestionType: qType, Points: points}
	q.ID = "q1"
	for i, id := range optionIDs {
		opt := model.Option{IsCorrect: i == correctIdx}
		opt.ID = id
		q.Options = append(q.Options, opt)
	}
	return q
}

func textQuestion(points int, correctText string) *model.Question {
	q := &model.Question{QuestionType: model.QuestionShortText, Points: points}
	q.ID = "q1"
	opt := model.Option{Text: correctText, IsCorrect: true}
	opt.ID = "opt-correct"
	q.Options = []model.Option{opt}
	return q
}

func TestEvaluateAnswerChoice(t *testing.T) {
	tests := []struct {
		name       string
		question   *model.Question
		answer     SubmittedAnswer
		wantPoints int
		wantOK     bool
	}{
		{
			name:       "multiple choice correct",
			question:   choiceQuestion(model.QuestionMultipleChoice, 5, []string{"a", "b", "c"}, 1),
			answer:     SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "b"},
			wantPoints: 5,
			wantOK:     true,
		},
		{
			name:     "multiple choice incorrect",
			question: choiceQuestion(model.QuestionMultipleChoice, 5, []string{"a", "b", "c"}, 1),
			answer:   SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "c"},
		},
		{
			name:     "multiple choice no selection",
			question: choiceQuestion(model.QuestionMultipleChoice, 5, []string{"a", "b"}, 0),
			answer:   SubmittedAnswer{QuestionID: "q1"},
		},
		{
			name:     "multiple choice phantom option id",
			question: choiceQuestion(model.QuestionMultipleChoice, 5, []string{"a", "b"}, 0),
			answer:   SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "zzz"},
		},
		{
			name:     "no option marked correct scores zero",
			question: choiceQuestion(model.QuestionMultipleChoice, 5, []string{"a", "b"}, -1),
			answer:   SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "a"},
		},
		{
			name:       "true false correct",
			question:   choiceQuestion(model.QuestionTrueFalse, 2, []string{"igaz", "hamis"}, 0),
			answer:     SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "igaz"},
			wantPoints: 2,
			wantOK:     true,
		},
		{
			name:       "match ordering uses choice semantics",
			question:   choiceQuestion(model.QuestionMatchOrdering, 3, []string{"a", "b"}, 1),
			answer:     SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "b"},
			wantPoints: 3,
			wantOK:     true,
		},
		{
			name:       "zero points falls back to one",
			question:   choiceQuestion(model.QuestionMultipleChoice, 0, []string{"a"}, 0),
			answer:     SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "a"},
			wantPoints: 1,
			wantOK:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateAnswer(tt.question, tt.answer)
			if got.IsCorrect != tt.wantOK || got.PointsEarned != tt.wantPoints {
				t.Errorf("EvaluateAnswer() = %+v, want correct=%v points=%d", got, tt.wantOK, tt.wantPoints)
			}
			if got.NeedsReview {
				t.Errorf("choice answer should never need review")
			}
		})
	}
}

func TestEvaluateAnswerShortText(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		answer  string
		wantOK  bool
	}{
		{"exact match", "Párizs", "Párizs", true},
		{"case insensitive", "Párizs", "párizs", true},
		{"surrounding whitespace trimmed", "Párizs", "  Párizs  ", true},
		{"accented uppercase folds", "Párizs", " PÁRIZS ", true},
		{"wrong answer", "Párizs", "London", false},
		{"empty answer", "Párizs", "", false},
		{"whitespace only answer", "Párizs", "   ", false},
		{"inner whitespace not collapsed", "New York", "New  York", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := textQuestion(4, tt.correct)
			got := EvaluateAnswer(q, SubmittedAnswer{QuestionID: "q1", TextAnswer: tt.answer})
			if got.IsCorrect != tt.wantOK {
				t.Errorf("EvaluateAnswer(%q vs %q) correct = %v, want %v", tt.answer, tt.correct, got.IsCorrect, tt.wantOK)
			}
			wantPoints := 0
			if tt.wantOK {
				wantPoints = 4
			}
			if got.PointsEarned != wantPoints {
				t.Errorf("points = %d, want %d", got.PointsEarned, wantPoints)
			}
		})
	}
}

func TestEvaluateAnswerManualTypes(t *testing.T) {
	manualTypes := []string{
		model.QuestionTextAssignment,
		model.QuestionFileAssignment,
		model.QuestionVideoRecording,
		model.QuestionAudioRecording,
	}

	for _, qType := range manualTypes {
		t.Run(qType, func(t *testing.T) {
			q := &model.Question{QuestionType: qType, Points: 10}
			q.ID = "q1"
			got := EvaluateAnswer(q, SubmittedAnswer{QuestionID: "q1", TextAnswer: "my essay"})
			if !got.NeedsReview {
				t.Errorf("manual type %s should need review", qType)
			}
			if got.IsCorrect || got.PointsEarned != 0 {
				t.Errorf("manual type %s should auto-score zero, got %+v", qType, got)
			}
		})
	}
}

func TestEvaluateAnswerUnknownType(t *testing.T) {
	q := &model.Question{QuestionType: "hologram", Points: 10}
	q.ID = "q1"
	got := EvaluateAnswer(q, SubmittedAnswer{QuestionID: "q1", SelectedOptionID: "a"})
	if got.IsCorrect || got.PointsEarned != 0 || got.NeedsReview {
		t.Errorf("unknown type should score zero without review, got %+v", got)
	}
}

func TestRoundPercentage(t *testing.T) {
	tests := []struct {
		total, max, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13}, // 12.5 rounds up
		{7, 10, 70},
	}
	for _, tt := range tests {
		if got := roundPercentage(tt.total, tt.max); got != tt.want {
			t.Errorf("roundPercentage(%d, %d) = %d, want %d", tt.total, tt.max, got, tt.want)
		}
	}
}
