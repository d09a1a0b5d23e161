package service

import (
	"context"
	"testing"

	"exam_engine_backend/internal/model"
)

func analyticsFixture() (*model.Quiz, []model.Attempt, []model.Answer) {
	quiz := testQuiz()

	mkAttempt := func(id string, pct int, passed bool, timeSpent int) model.Attempt {
		a := model.Attempt{
			QuizID:           quiz.ID,
			Status:           model.AttemptCompleted,
			PercentageScore:  pct,
			Passed:           passed,
			TimeSpentSeconds: timeSpent,
		}
		a.ID = id
		return a
	}
	attempts := []model.Attempt{
		mkAttempt("a1", 100, true, 60),
		mkAttempt("a2", 40, false, 120),
		mkAttempt("a3", 80, true, 90),
	}

	mkAnswer := func(attemptID, questionID string, correct bool, timeSpent int) model.Answer {
		ans := model.Answer{
			AttemptID:        attemptID,
			QuestionID:       questionID,
			IsCorrect:        correct,
			TimeSpentSeconds: timeSpent,
		}
		ans.ID = attemptID + "-" + questionID
		return ans
	}
	answers := []model.Answer{
		mkAnswer("a1", "q-mc", true, 10),
		mkAnswer("a2", "q-mc", false, 30),
		mkAnswer("a3", "q-mc", true, 20),
		mkAnswer("a1", "q-tf", true, 5),
		mkAnswer("a2", "q-tf", false, 15),
	}

	return quiz, attempts, answers
}

func TestAggregateAnalytics(t *testing.T) {
	quiz, attempts, answers := analyticsFixture()

	got := aggregateAnalytics(quiz, attempts, answers)

	if got.TotalAttempts != 3 {
		t.Errorf("totalAttempts = %d, want 3", got.TotalAttempts)
	}
	if got.AverageScore != 73.33 {
		t.Errorf("averageScore = %v, want 73.33", got.AverageScore)
	}
	if got.PassRate != 66.67 {
		t.Errorf("passRate = %v, want 66.67", got.PassRate)
	}
	if got.AverageTimeSpentSeconds != 90 {
		t.Errorf("averageTime = %v, want 90", got.AverageTimeSpentSeconds)
	}

	// 题目统计按卷面顺序输出
	if len(got.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(got.Questions))
	}
	mc := got.Questions[0]
	if mc.QuestionID != "q-mc" || mc.CorrectCount != 2 || mc.IncorrectCount != 1 {
		t.Errorf("q-mc stats = %+v", mc)
	}
	if mc.AverageTimeSpentSeconds != 20 {
		t.Errorf("q-mc averageTime = %v, want 20", mc.AverageTimeSpentSeconds)
	}

	// 无人作答的题目输出零值而非缺失
	st := got.Questions[2]
	if st.QuestionID != "q-st" || st.CorrectCount != 0 || st.IncorrectCount != 0 {
		t.Errorf("q-st stats = %+v", st)
	}
}

func TestAggregateAnalyticsNoAttempts(t *testing.T) {
	quiz := testQuiz()

	got := aggregateAnalytics(quiz, nil, nil)

	if got.TotalAttempts != 0 || got.AverageScore != 0 || got.PassRate != 0 {
		t.Errorf("empty quiz analytics = %+v, want all zero", got)
	}
	if len(got.Questions) != 3 {
		t.Errorf("questions = %d, want 3", len(got.Questions))
	}
}

type fakeAnalyticsStore struct {
	attempts []model.Attempt
	answers  []model.Answer
}

func (s *fakeAnalyticsStore) CompletedByQuiz(quizID string) ([]model.Attempt, error) {
	return s.attempts, nil
}

func (s *fakeAnalyticsStore) AnswersForQuiz(quizID string) ([]model.Answer, error) {
	return s.answers, nil
}

// Redis 未配置时统计直接回源
func TestGetQuizAnalyticsWithoutCache(t *testing.T) {
	quiz, attempts, answers := analyticsFixture()
	svc := NewAnalyticsService(
		newFakeQuizStore(quiz),
		&fakeAnalyticsStore{attempts: attempts, answers: answers},
		nil,
		60,
	)

	got, err := svc.GetQuizAnalytics(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("GetQuizAnalytics() error = %v", err)
	}
	if got.TotalAttempts != 3 || got.PassRate != 66.67 {
		t.Errorf("analytics = %+v", got)
	}

	// Redis 未配置时失效调用必须安全跳过
	svc.InvalidateQuiz(context.Background(), quiz.ID)
}
