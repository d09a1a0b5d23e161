package service

import (
	"context"
	"math"
	"time"

	"exam_engine_backend/internal/model"
	"exam_engine_backend/internal/util"
	"exam_engine_backend/pkg/logger"
	"exam_engine_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// QuizStore 尝试生命周期需要的测验目录读取口
type QuizStore interface {
	FindByID(id string) (*model.Quiz, error)
	FindWithQuestions(id string) (*model.Quiz, error)
}

// AttemptStore 尝试与答案的持久化口。
// CreateWithLimit 与 SaveSubmission 必须由实现方保证原子性。
type AttemptStore interface {
	CreateWithLimit(quizID string, studentID uint, maxAttempts int) (*model.Attempt, error)
	FindByID(id string) (*model.Attempt, error)
	SaveSubmission(attempt *model.Attempt, answers []model.Answer) error
	GetAnswers(attemptID string) ([]model.Answer, error)
	ListByStudentAndQuiz(studentID uint, quizID string) ([]model.Attempt, error)
	ListByQuiz(quizID string, page, limit int) ([]model.Attempt, int64, error)
	ListPendingReview(quizID string) ([]model.Attempt, error)
	SaveGrades(attempt *model.Attempt, graded []model.Answer) error
	MarkExpired(attemptID string, endTime time.Time) error
	ExpireOverdue(graceSeconds int) (int64, error)
}

// AnalyticsInvalidator 尝试完成或批改后需要失效的统计缓存口
type AnalyticsInvalidator interface {
	InvalidateQuiz(ctx context.Context, quizID string)
}

type AttemptService struct {
	Quizzes  QuizStore
	Attempts AttemptStore

	// Analytics 为空时跳过缓存失效
	Analytics AnalyticsInvalidator

	// ExpiryGraceSeconds 限时测验超时后的宽限，宽限内提交仍被接受
	ExpiryGraceSeconds int
}

func NewAttemptService(quizzes QuizStore, attempts AttemptStore, graceSeconds int) *AttemptService {
	return &AttemptService{
		Quizzes:            quizzes,
		Attempts:           attempts,
		ExpiryGraceSeconds: graceSeconds,
	}
}

// StartAttempt 开始一次答题。
// 次数校验与创建由存储层在同一事务内完成，并发开考不会超限。
func (s *AttemptService) StartAttempt(studentID uint, quizID string) (*model.Attempt, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotPublished
	}

	attempt, err := s.Attempts.CreateWithLimit(quiz.ID, studentID, quiz.MaxAttempts)
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.Inc()
	return attempt, nil
}

// AnswerResult 结果视图中的单题明细。标准答案与解析只出现在
// 本人已完成尝试的结果里。
type AnswerResult struct {
	QuestionID       string `json:"questionId"`
	QuestionText     string `json:"questionText"`
	QuestionType     string `json:"questionType"`
	Points           int    `json:"points"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	TextAnswer       string `json:"textAnswer,omitempty"`
	IsCorrect        bool   `json:"isCorrect"`
	PointsEarned     int    `json:"pointsEarned"`
	NeedsReview      bool   `json:"needsReview,omitempty"`
	CorrectAnswer    string `json:"correctAnswer,omitempty"`
	Explanation      string `json:"explanation,omitempty"`
}

type AttemptResults struct {
	TotalScore      int            `json:"totalScore"`
	MaxScore        int            `json:"maxScore"`
	PercentageScore int            `json:"percentageScore"`
	Passed          bool           `json:"passed"`
	NeedsReview     bool           `json:"needsReview"`
	Answers         []AnswerResult `json:"answers"`
}

type SubmitResult struct {
	Attempt *model.Attempt `json:"attempt"`
	Results AttemptResults `json:"results"`
}

// SubmitAttempt 提交整卷并原子完成判分落库。
// 判分使用提交时刻的目录数据；逐题判分失败软降级，不会中断整卷。
func (s *AttemptService) SubmitAttempt(attemptID string, studentID uint, submitted []SubmittedAnswer, timeSpentSeconds int) (*SubmitResult, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status == model.AttemptExpired {
		return nil, util.ErrAttemptExpired
	}
	if attempt.Status == model.AttemptCompleted {
		return nil, util.ErrAttemptCompleted
	}

	quiz, err := s.Quizzes.FindWithQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	// 限时惰性过期：超过限时+宽限的迟交被拒绝，尝试进入 expired 终态
	if quiz.TimeLimitMinutes > 0 {
		deadline := attempt.StartTime.
			Add(time.Duration(quiz.TimeLimitMinutes) * time.Minute).
			Add(time.Duration(s.ExpiryGraceSeconds) * time.Second)
		if now.After(deadline) {
			if err := s.Attempts.MarkExpired(attempt.ID, now); err != nil {
				return nil, err
			}
			monitoring.AttemptsExpired.Inc()
			return nil, util.ErrAttemptExpired
		}
	}

	evalStart := time.Now()

	questionMap := make(map[string]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questionMap[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	// 每题只保留一份作答，同题重复提交时取最后一次
	deduped := make([]SubmittedAnswer, 0, len(submitted))
	seen := make(map[string]int, len(submitted))
	for _, sub := range submitted {
		if idx, ok := seen[sub.QuestionID]; ok {
			deduped[idx] = sub
			continue
		}
		seen[sub.QuestionID] = len(deduped)
		deduped = append(deduped, sub)
	}

	totalScore := 0
	maxScore := 0
	needsReview := false
	answers := make([]model.Answer, 0, len(deduped))

	for _, sub := range deduped {
		answer := model.Answer{
			QuestionID:       sub.QuestionID,
			SelectedOptionID: sub.SelectedOptionID,
			TextAnswer:       sub.TextAnswer,
			TimeSpentSeconds: sub.TimeSpentSeconds,
		}

		// 题目已从目录删除：保留作答记录但计 0 分，maxScore 不累加
		if q, ok := questionMap[sub.QuestionID]; ok {
			eval := EvaluateAnswer(q, sub)
			answer.IsCorrect = eval.IsCorrect
			answer.PointsEarned = eval.PointsEarned
			if eval.NeedsReview {
				answer.ReviewStatus = model.ReviewPending
				needsReview = true
			}
			totalScore += eval.PointsEarned
			maxScore += q.EffectivePoints()
		}

		answers = append(answers, answer)
	}

	percentage := roundPercentage(totalScore, maxScore)
	passed := percentage >= quiz.EffectivePassingScore()

	attempt.Status = model.AttemptCompleted
	attempt.EndTime = &now
	attempt.TotalScore = totalScore
	attempt.MaxScore = maxScore
	attempt.PercentageScore = percentage
	attempt.Passed = passed
	attempt.NeedsReview = needsReview
	attempt.TimeSpentSeconds = timeSpentSeconds

	if err := s.Attempts.SaveSubmission(attempt, answers); err != nil {
		return nil, err
	}

	monitoring.EvaluationDuration.Observe(time.Since(evalStart).Seconds())
	monitoring.ObserveAttemptCompleted(passed)

	if s.Analytics != nil {
		s.Analytics.InvalidateQuiz(context.Background(), quiz.ID)
	}

	logger.Log.Info("attempt submitted",
		zap.String("attemptId", attempt.ID),
		zap.String("quizId", quiz.ID),
		zap.Uint("studentId", studentID),
		zap.Int("percentageScore", percentage),
		zap.Bool("passed", passed))

	return &SubmitResult{
		Attempt: attempt,
		Results: buildResults(attempt, quiz, answers),
	}, nil
}

// GetResults 查询已完成尝试的结果。只读，直接使用落库数据，不重算。
func (s *AttemptService) GetResults(attemptID string, studentID uint) (*SubmitResult, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptCompleted {
		return nil, util.ErrAttemptNotCompleted
	}

	quiz, err := s.Quizzes.FindWithQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	answers, err := s.Attempts.GetAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		Attempt: attempt,
		Results: buildResults(attempt, quiz, answers),
	}, nil
}

// ListAttempts 学生查看自己在某个测验上的答题历史
func (s *AttemptService) ListAttempts(studentID uint, quizID string) ([]model.Attempt, error) {
	if _, err := s.Quizzes.FindByID(quizID); err != nil {
		return nil, err
	}
	return s.Attempts.ListByStudentAndQuiz(studentID, quizID)
}

// ListSubmissions 教师查看某个测验的全部尝试
func (s *AttemptService) ListSubmissions(quizID string, page, limit int) ([]model.Attempt, int64, error) {
	if _, err := s.Quizzes.FindByID(quizID); err != nil {
		return nil, 0, err
	}
	return s.Attempts.ListByQuiz(quizID, page, limit)
}

// ListPendingReview 待人工批改的尝试
func (s *AttemptService) ListPendingReview(quizID string) ([]model.Attempt, error) {
	return s.Attempts.ListPendingReview(quizID)
}

// AnswerScore 人工批改对单个答案的给分
type AnswerScore struct {
	AnswerID     string `json:"answerId" binding:"required"`
	PointsEarned int    `json:"pointsEarned"`
	Comment      string `json:"comment"`
}

// GradeAttempt 人工批改：按答案更新得分，重算总分与及格判定。
// 给分被钳制在 [0, 题目分值] 内。
func (s *AttemptService) GradeAttempt(graderID uint, attemptID string, scores []AnswerScore) (*model.Attempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptCompleted {
		return nil, util.ErrAttemptNotCompleted
	}

	quiz, err := s.Quizzes.FindWithQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	answers, err := s.Attempts.GetAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	questionMap := make(map[string]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questionMap[quiz.Questions[i].ID] = &quiz.Questions[i]
	}
	scoreMap := make(map[string]AnswerScore, len(scores))
	for _, sc := range scores {
		scoreMap[sc.AnswerID] = sc
	}

	graded := make([]model.Answer, 0, len(scores))
	totalScore := 0
	stillPending := false

	for i := range answers {
		a := &answers[i]
		if sc, ok := scoreMap[a.ID]; ok && a.ReviewStatus != model.ReviewNone {
			points := sc.PointsEarned
			q, qok := questionMap[a.QuestionID]
			switch {
			case !qok:
				// 题目已从卷面删除，不再允许计分
				points = 0
			case points < 0:
				points = 0
			case points > q.EffectivePoints():
				points = q.EffectivePoints()
			}
			a.PointsEarned = points
			a.IsCorrect = fullCredit(questionMap, a.QuestionID, points)
			a.ReviewStatus = model.ReviewGraded
			a.GraderID = graderID
			a.GraderComment = sc.Comment
			graded = append(graded, *a)
		}
		if a.ReviewStatus == model.ReviewPending {
			stillPending = true
		}
		totalScore += a.PointsEarned
	}

	percentage := roundPercentage(totalScore, attempt.MaxScore)

	attempt.TotalScore = totalScore
	attempt.PercentageScore = percentage
	attempt.Passed = percentage >= quiz.EffectivePassingScore()
	attempt.NeedsReview = stillPending

	if err := s.Attempts.SaveGrades(attempt, graded); err != nil {
		return nil, err
	}

	if s.Analytics != nil {
		s.Analytics.InvalidateQuiz(context.Background(), attempt.QuizID)
	}

	logger.Log.Info("attempt graded",
		zap.String("attemptId", attempt.ID),
		zap.Uint("graderId", graderID),
		zap.Int("totalScore", totalScore))

	return attempt, nil
}

// ExpireOverdueAttempts 后台定时清扫超时未交卷的尝试
func (s *AttemptService) ExpireOverdueAttempts() error {
	expired, err := s.Attempts.ExpireOverdue(s.ExpiryGraceSeconds)
	if err != nil {
		return err
	}
	if expired > 0 {
		monitoring.AttemptsExpired.Add(float64(expired))
		logger.Log.Info("expired overdue attempts", zap.Int64("count", expired))
	}
	return nil
}

// fullCredit 人工给满分视为答对
func fullCredit(questions map[string]*model.Question, questionID string, points int) bool {
	q, ok := questions[questionID]
	if !ok {
		return false
	}
	return points >= q.EffectivePoints()
}

// roundPercentage 四舍五入到整数百分比；maxScore 为 0 时返回 0 而不是除零
func roundPercentage(totalScore, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(totalScore) / float64(maxScore)))
}

func buildResults(attempt *model.Attempt, quiz *model.Quiz, answers []model.Answer) AttemptResults {
	questionMap := make(map[string]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questionMap[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	results := AttemptResults{
		TotalScore:      attempt.TotalScore,
		MaxScore:        attempt.MaxScore,
		PercentageScore: attempt.PercentageScore,
		Passed:          attempt.Passed,
		NeedsReview:     attempt.NeedsReview,
		Answers:         make([]AnswerResult, 0, len(answers)),
	}

	for _, a := range answers {
		ar := AnswerResult{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			TextAnswer:       a.TextAnswer,
			IsCorrect:        a.IsCorrect,
			PointsEarned:     a.PointsEarned,
			NeedsReview:      a.ReviewStatus == model.ReviewPending,
		}
		if q, ok := questionMap[a.QuestionID]; ok {
			ar.QuestionText = q.Text
			ar.QuestionType = q.QuestionType
			ar.Points = q.EffectivePoints()
			ar.Explanation = q.Explanation
			if correct := q.CorrectOption(); correct != nil && !q.IsManuallyGraded() {
				ar.CorrectAnswer = correct.Text
			}
		}
		results.Answers = append(results.Answers, ar)
	}
	return results
}
