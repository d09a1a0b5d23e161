package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"exam_engine_backend/internal/model"
	"exam_engine_backend/internal/repository"
	"exam_engine_backend/internal/util"
)

type QuizService struct {
	Repo *repository.QuizRepository

	// DefaultPassingScore 建卷未填及格线时的默认百分比
	DefaultPassingScore int
}

func NewQuizService(repo *repository.QuizRepository, defaultPassingScore int) *QuizService {
	if defaultPassingScore <= 0 || defaultPassingScore > 100 {
		defaultPassingScore = model.DefaultPassingScorePercent
	}
	return &QuizService{Repo: repo, DefaultPassingScore: defaultPassingScore}
}

type OptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionRequest struct {
	QuestionType string          `json:"questionType" binding:"required"`
	Text         string          `json:"text"`
	Points       int             `json:"points"`
	IsRequired   bool            `json:"isRequired"`
	ImageURL     string          `json:"imageUrl"`
	VideoURL     string          `json:"videoUrl"`
	Explanation  string          `json:"explanation"`
	Options      []OptionRequest `json:"options"`
}

type QuizRequest struct {
	LessonID            string            `json:"lessonId"`
	Title               string            `json:"title" binding:"required"`
	Description         string            `json:"description"`
	TimeLimitMinutes    int               `json:"timeLimitMinutes"`
	MaxAttempts         int               `json:"maxAttempts"`
	PassingScorePercent int               `json:"passingScorePercent"`
	IsPublished         bool              `json:"isPublished"`
	Questions           []QuestionRequest `json:"questions"`
}

func buildQuestions(reqs []QuestionRequest) []model.Question {
	questions := make([]model.Question, 0, len(reqs))
	for idx, qr := range reqs {
		q := model.Question{
			QuestionType: qr.QuestionType,
			Text:         qr.Text,
			Points:       qr.Points,
			OrderIndex:   idx + 1,
			IsRequired:   qr.IsRequired,
			ImageURL:     qr.ImageURL,
			VideoURL:     qr.VideoURL,
			Explanation:  qr.Explanation,
		}
		for oidx, or := range qr.Options {
			q.Options = append(q.Options, model.Option{
				Text:       or.Text,
				IsCorrect:  or.IsCorrect,
				OrderIndex: oidx + 1,
			})
		}
		questions = append(questions, q)
	}
	return questions
}

// CreateQuiz 建卷。草稿允许结构不完整，发布时才强制校验
func (s *QuizService) CreateQuiz(creatorID uint, req QuizRequest) (*model.Quiz, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("title required")
	}

	passing := req.PassingScorePercent
	if passing <= 0 || passing > 100 {
		passing = s.DefaultPassingScore
	}

	quiz := &model.Quiz{
		LessonID:            req.LessonID,
		CreatorID:           creatorID,
		Title:               req.Title,
		Description:         req.Description,
		TimeLimitMinutes:    req.TimeLimitMinutes,
		MaxAttempts:         req.MaxAttempts,
		PassingScorePercent: passing,
		Questions:           buildQuestions(req.Questions),
	}

	if req.IsPublished {
		if result := validateQuiz(quiz); !result.IsValid {
			return nil, fmt.Errorf("quiz is not publishable: %s", strings.Join(result.Errors, "; "))
		}
		now := time.Now()
		quiz.IsPublished = true
		quiz.PublishedAt = &now
	}

	if err := s.Repo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID string, req QuizRequest) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(quizID)
	if err != nil {
		return nil, err
	}

	quiz.LessonID = req.LessonID
	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.TimeLimitMinutes = req.TimeLimitMinutes
	quiz.MaxAttempts = req.MaxAttempts
	if req.PassingScorePercent > 0 && req.PassingScorePercent <= 100 {
		quiz.PassingScorePercent = req.PassingScorePercent
	}

	if err := s.Repo.Update(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		if err := s.Repo.ReplaceQuestions(quiz.ID, buildQuestions(req.Questions)); err != nil {
			return nil, err
		}
	}

	return s.Repo.FindWithQuestions(quiz.ID)
}

func (s *QuizService) DeleteQuiz(quizID string) error {
	return s.Repo.Delete(quizID)
}

func (s *QuizService) GetQuiz(quizID string) (*model.Quiz, error) {
	return s.Repo.FindWithQuestions(quizID)
}

func (s *QuizService) ListQuizzes(page, limit int) ([]model.Quiz, int64, error) {
	return s.Repo.List(page, limit)
}

// PublishQuiz 发布前走完整校验，不合格的卷不允许上线
func (s *QuizService) PublishQuiz(quizID string, publish bool) (*model.Quiz, error) {
	quiz, err := s.Repo.FindWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	if publish {
		if result := validateQuiz(quiz); !result.IsValid {
			return nil, fmt.Errorf("quiz is not publishable: %s", strings.Join(result.Errors, "; "))
		}
		now := time.Now()
		quiz.IsPublished = true
		quiz.PublishedAt = &now
	} else {
		quiz.IsPublished = false
		quiz.PublishedAt = nil
	}

	if err := s.Repo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// StudentOption 学生视图的选项，不含答案标记
type StudentOption struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	OrderIndex int    `json:"orderIndex"`
}

type StudentQuestion struct {
	ID           string          `json:"id"`
	QuestionType string          `json:"questionType"`
	Text         string          `json:"text"`
	Points       int             `json:"points"`
	OrderIndex   int             `json:"orderIndex"`
	IsRequired   bool            `json:"isRequired"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	VideoURL     string          `json:"videoUrl,omitempty"`
	Options      []StudentOption `json:"options,omitempty"`
}

type StudentQuizView struct {
	ID                  string            `json:"id"`
	LessonID            string            `json:"lessonId"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	TimeLimitMinutes    int               `json:"timeLimitMinutes"`
	MaxAttempts         int               `json:"maxAttempts"`
	PassingScorePercent int               `json:"passingScorePercent"`
	QuestionCount       int               `json:"questionCount"`
	Questions           []StudentQuestion `json:"questions"`
}

// GetStudentQuiz 返回已发布测验的应试视图。
// 正确选项标记、答案解析一律不下发，只有判分完成后才随结果返回。
func (s *QuizService) GetStudentQuiz(quizID string) (*StudentQuizView, error) {
	quiz, err := s.Repo.FindWithQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotPublished
	}

	view := &StudentQuizView{
		ID:                  quiz.ID,
		LessonID:            quiz.LessonID,
		Title:               quiz.Title,
		Description:         quiz.Description,
		TimeLimitMinutes:    quiz.TimeLimitMinutes,
		MaxAttempts:         quiz.MaxAttempts,
		PassingScorePercent: quiz.EffectivePassingScore(),
		QuestionCount:       len(quiz.Questions),
	}
	for _, q := range quiz.Questions {
		sq := StudentQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Text:         q.Text,
			Points:       q.EffectivePoints(),
			OrderIndex:   q.OrderIndex,
			IsRequired:   q.IsRequired,
			ImageURL:     q.ImageURL,
			VideoURL:     q.VideoURL,
		}
		for _, o := range q.Options {
			sq.Options = append(sq.Options, StudentOption{
				ID:         o.ID,
				Text:       o.Text,
				OrderIndex: o.OrderIndex,
			})
		}
		view.Questions = append(view.Questions, sq)
	}
	return view, nil
}

// ValidationResult 发布前检查结果，warnings 不阻塞发布
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (s *QuizService) ValidateQuiz(quizID string) (*ValidationResult, error) {
	quiz, err := s.Repo.FindWithQuestions(quizID)
	if err != nil {
		return nil, err
	}
	result := validateQuiz(quiz)
	return &result, nil
}

func validateQuiz(quiz *model.Quiz) ValidationResult {
	result := ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	if strings.TrimSpace(quiz.Title) == "" {
		result.Errors = append(result.Errors, "quiz title is empty")
	}
	if len(quiz.Questions) == 0 {
		result.Errors = append(result.Errors, "quiz has no questions")
	}

	for i, q := range quiz.Questions {
		label := fmt.Sprintf("question %d", i+1)
		if strings.TrimSpace(q.Text) == "" {
			result.Errors = append(result.Errors, label+": text is empty")
		}
		if err := q.ValidateStructure(); err != nil {
			result.Errors = append(result.Errors, label+": "+err.Error())
		}
		if q.QuestionType == model.QuestionMultipleChoice && len(q.Options) == 1 {
			result.Errors = append(result.Errors, label+": multiple_choice question needs at least 2 options")
		}
		if q.Points <= 0 {
			result.Warnings = append(result.Warnings, label+": points not set, counting as 1")
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
