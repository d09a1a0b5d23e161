package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"exam_engine_backend/internal/model"
	"exam_engine_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsStore 统计聚合需要的只读口，只涉及已完成尝试
type AnalyticsStore interface {
	CompletedByQuiz(quizID string) ([]model.Attempt, error)
	AnswersForQuiz(quizID string) ([]model.Answer, error)
}

type AnalyticsService struct {
	Quizzes  QuizStore
	Attempts AnalyticsStore

	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewAnalyticsService(quizzes QuizStore, attempts AnalyticsStore, rdb *redis.Client, ttlSeconds int) *AnalyticsService {
	return &AnalyticsService{
		Quizzes:  quizzes,
		Attempts: attempts,
		Redis:    rdb,
		CacheTTL: time.Duration(ttlSeconds) * time.Second,
	}
}

// QuestionStats 单题作答统计
type QuestionStats struct {
	QuestionID              string  `json:"questionId"`
	QuestionText            string  `json:"questionText"`
	QuestionType            string  `json:"questionType"`
	CorrectCount            int     `json:"correctCount"`
	IncorrectCount          int     `json:"incorrectCount"`
	AverageTimeSpentSeconds float64 `json:"averageTimeSpentSeconds"`
}

// QuizAnalytics 测验维度的聚合结果，只统计已完成的尝试
type QuizAnalytics struct {
	QuizID                  string          `json:"quizId"`
	TotalAttempts           int             `json:"totalAttempts"`
	AverageScore            float64         `json:"averageScore"`
	PassRate                float64         `json:"passRate"`
	AverageTimeSpentSeconds float64         `json:"averageTimeSpentSeconds"`
	Questions               []QuestionStats `json:"questions"`
}

// GetQuizAnalytics 聚合某个测验的作答统计，结果短暂缓存在 Redis。
// 缓存不可用时直接回源，统计功能不依赖缓存存活。
func (s *AnalyticsService) GetQuizAnalytics(ctx context.Context, quizID string) (*QuizAnalytics, error) {
	quiz, err := s.Quizzes.FindWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	cacheKey := analyticsCacheKey(quizID)
	if s.Redis != nil && s.CacheTTL > 0 {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var analytics QuizAnalytics
			if json.Unmarshal([]byte(cached), &analytics) == nil {
				return &analytics, nil
			}
		}
	}

	attempts, err := s.Attempts.CompletedByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	answers, err := s.Attempts.AnswersForQuiz(quizID)
	if err != nil {
		return nil, err
	}

	analytics := aggregateAnalytics(quiz, attempts, answers)

	if s.Redis != nil && s.CacheTTL > 0 {
		if data, err := json.Marshal(analytics); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, s.CacheTTL).Err(); err != nil {
				logger.Log.Warn("analytics cache write failed",
					zap.String("quizId", quizID), zap.Error(err))
			}
		}
	}

	return analytics, nil
}

func analyticsCacheKey(quizID string) string {
	return fmt.Sprintf("quiz:analytics:%s", quizID)
}

// InvalidateQuiz 答题完成或批改后使缓存失效，下一次查询回源
func (s *AnalyticsService) InvalidateQuiz(ctx context.Context, quizID string) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}
	if err := s.Redis.Del(ctx, analyticsCacheKey(quizID)).Err(); err != nil {
		logger.Log.Warn("analytics cache invalidation failed",
			zap.String("quizId", quizID), zap.Error(err))
	}
}

// aggregateAnalytics 纯聚合。题目顺序跟随测验的题目排序。
func aggregateAnalytics(quiz *model.Quiz, attempts []model.Attempt, answers []model.Answer) *QuizAnalytics {
	analytics := &QuizAnalytics{
		QuizID:        quiz.ID,
		TotalAttempts: len(attempts),
		Questions:     make([]QuestionStats, 0, len(quiz.Questions)),
	}

	if len(attempts) > 0 {
		scoreSum := 0
		passCount := 0
		timeSum := 0
		for _, a := range attempts {
			scoreSum += a.PercentageScore
			timeSum += a.TimeSpentSeconds
			if a.Passed {
				passCount++
			}
		}
		n := float64(len(attempts))
		analytics.AverageScore = round2(float64(scoreSum) / n)
		analytics.PassRate = round2(100 * float64(passCount) / n)
		analytics.AverageTimeSpentSeconds = round2(float64(timeSum) / n)
	}

	type tally struct {
		correct   int
		incorrect int
		timeSum   int
		count     int
	}
	tallies := make(map[string]*tally, len(quiz.Questions))
	for _, a := range answers {
		t, ok := tallies[a.QuestionID]
		if !ok {
			t = &tally{}
			tallies[a.QuestionID] = t
		}
		if a.IsCorrect {
			t.correct++
		} else {
			t.incorrect++
		}
		t.timeSum += a.TimeSpentSeconds
		t.count++
	}

	for _, q := range quiz.Questions {
		stats := QuestionStats{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			QuestionType: q.QuestionType,
		}
		if t, ok := tallies[q.ID]; ok {
			stats.CorrectCount = t.correct
			stats.IncorrectCount = t.incorrect
			if t.count > 0 {
				stats.AverageTimeSpentSeconds = round2(float64(t.timeSum) / float64(t.count))
			}
		}
		analytics.Questions = append(analytics.Questions, stats)
	}

	return analytics
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
