package service

import (
	"strings"
	"testing"

	"exam_engine_backend/internal/model"
)

func TestValidateQuiz(t *testing.T) {
	valid := testQuiz()

	noTitle := testQuiz()
	noTitle.Title = "   "

	noQuestions := testQuiz()
	noQuestions.Questions = nil

	emptyText := testQuiz()
	emptyText.Questions[0].Text = ""

	noCorrect := testQuiz()
	for i := range noCorrect.Questions[0].Options {
		noCorrect.Questions[0].Options[i].IsCorrect = false
	}

	singleOption := testQuiz()
	singleOption.Questions[0].Options = singleOption.Questions[0].Options[:1]
	singleOption.Questions[0].Options[0].IsCorrect = true

	badTrueFalse := testQuiz()
	extra := model.Option{Text: "Talán", OrderIndex: 3}
	extra.ID = "opt-maybe"
	badTrueFalse.Questions[1].Options = append(badTrueFalse.Questions[1].Options, extra)

	zeroPoints := testQuiz()
	zeroPoints.Questions[0].Points = 0

	tests := []struct {
		name         string
		quiz         *model.Quiz
		wantValid    bool
		wantErrPart  string
		wantWarnings int
	}{
		{"valid quiz", valid, true, "", 0},
		{"blank title", noTitle, false, "title", 0},
		{"no questions", noQuestions, false, "no questions", 0},
		{"question without text", emptyText, false, "text", 0},
		{"no correct option", noCorrect, false, "correct", 0},
		{"single option multiple choice", singleOption, false, "option", 0},
		{"true false with three options", badTrueFalse, false, "2 options", 0},
		{"zero points warns only", zeroPoints, true, "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateQuiz(tt.quiz)
			if got.IsValid != tt.wantValid {
				t.Errorf("isValid = %v, want %v (errors: %v)", got.IsValid, tt.wantValid, got.Errors)
			}
			if tt.wantErrPart != "" {
				found := false
				for _, e := range got.Errors {
					if strings.Contains(e, tt.wantErrPart) {
						found = true
					}
				}
				if !found {
					t.Errorf("errors %v do not mention %q", got.Errors, tt.wantErrPart)
				}
			}
			if len(got.Warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", got.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestBuildQuestionsAssignsOrder(t *testing.T) {
	questions := buildQuestions([]QuestionRequest{
		{QuestionType: model.QuestionShortText, Text: "első"},
		{QuestionType: model.QuestionMultipleChoice, Text: "második", Options: []OptionRequest{
			{Text: "a"}, {Text: "b", IsCorrect: true},
		}},
	})

	if len(questions) != 2 {
		t.Fatalf("built %d questions, want 2", len(questions))
	}
	if questions[0].OrderIndex != 1 || questions[1].OrderIndex != 2 {
		t.Errorf("order = %d, %d, want 1, 2", questions[0].OrderIndex, questions[1].OrderIndex)
	}
	if questions[1].Options[1].OrderIndex != 2 || !questions[1].Options[1].IsCorrect {
		t.Errorf("option mapping broken: %+v", questions[1].Options)
	}
}
