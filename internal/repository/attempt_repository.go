package repository

import (
	"errors"
	"exam_engine_backend/internal/model"
	"exam_engine_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateWithLimit 在单事务内完成"查次数-建尝试"。
// 事务对 quiz 行加排他锁，让同一测验上的并发开考串行化；
// (quiz_id, student_id, attempt_number) 唯一索引兜底多实例部署。
func (r *AttemptRepository) CreateWithLimit(quizID string, studentID uint, maxAttempts int) (*model.Attempt, error) {
	var attempt *model.Attempt
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var quiz model.Quiz
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&quiz, "id = ?", quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrQuizNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.Attempt{}).
			Where("quiz_id = ? AND student_id = ?", quizID, studentID).
			Count(&count).Error; err != nil {
			return err
		}
		if maxAttempts > 0 && int(count) >= maxAttempts {
			return util.ErrAttemptLimitExceeded
		}

		attempt = &model.Attempt{
			QuizID:        quizID,
			StudentID:     studentID,
			AttemptNumber: int(count) + 1,
			Status:        model.AttemptInProgress,
			StartTime:     time.Now(),
		}
		return tx.Create(attempt).Error
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

// SaveSubmission 原子落库：答案写入与状态翻转要么同时成功要么都不发生。
// 状态翻转带 status 条件，和并发的重复提交互斥。
func (r *AttemptRepository) SaveSubmission(attempt *model.Attempt, answers []model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":             attempt.Status,
				"end_time":           attempt.EndTime,
				"total_score":        attempt.TotalScore,
				"max_score":          attempt.MaxScore,
				"percentage_score":   attempt.PercentageScore,
				"passed":             attempt.Passed,
				"needs_review":       attempt.NeedsReview,
				"time_spent_seconds": attempt.TimeSpentSeconds,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAttemptCompleted
		}

		if len(answers) > 0 {
			for i := range answers {
				answers[i].AttemptID = attempt.ID
			}
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AttemptRepository) GetAnswers(attemptID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Where("attempt_id = ?", attemptID).Order("created_at ASC").Find(&answers).Error
	return answers, err
}

func (r *AttemptRepository) ListByStudentAndQuiz(studentID uint, quizID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByQuiz(quizID string, page, limit int) ([]model.Attempt, int64, error) {
	var attempts []model.Attempt
	var total int64

	query := r.DB.Model(&model.Attempt{}).Where("quiz_id = ?", quizID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) CompletedByQuiz(quizID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.
		Where("quiz_id = ? AND status = ?", quizID, model.AttemptCompleted).
		Find(&attempts).Error
	return attempts, err
}

// AnswersForQuiz 返回该测验所有已完成尝试的答案记录
func (r *AttemptRepository) AnswersForQuiz(quizID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.
		Joins("JOIN attempts ON attempts.id = answers.attempt_id").
		Where("attempts.quiz_id = ? AND attempts.status = ?", quizID, model.AttemptCompleted).
		Find(&answers).Error
	return answers, err
}

func (r *AttemptRepository) ListPendingReview(quizID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.DB.Where("needs_review = ? AND status = ?", true, model.AttemptCompleted)
	if quizID != "" {
		query = query.Where("quiz_id = ?", quizID)
	}
	err := query.Order("created_at ASC").Find(&attempts).Error
	return attempts, err
}

// SaveGrades 人工评分落库：更新答案与重算后的尝试汇总，单事务
func (r *AttemptRepository) SaveGrades(attempt *model.Attempt, graded []model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range graded {
			res := tx.Model(&model.Answer{}).
				Where("id = ? AND attempt_id = ?", graded[i].ID, attempt.ID).
				Updates(map[string]interface{}{
					"is_correct":     graded[i].IsCorrect,
					"points_earned":  graded[i].PointsEarned,
					"review_status":  graded[i].ReviewStatus,
					"grader_id":      graded[i].GraderID,
					"grader_comment": graded[i].GraderComment,
				})
			if res.Error != nil {
				return res.Error
			}
		}
		return tx.Model(&model.Attempt{}).
			Where("id = ?", attempt.ID).
			Updates(map[string]interface{}{
				"total_score":      attempt.TotalScore,
				"percentage_score": attempt.PercentageScore,
				"passed":           attempt.Passed,
				"needs_review":     attempt.NeedsReview,
			}).Error
	})
}

// MarkExpired 惰性过期：仅 in_progress 的尝试会被置为 expired
func (r *AttemptRepository) MarkExpired(attemptID string, endTime time.Time) error {
	return r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":   model.AttemptExpired,
			"end_time": endTime,
		}).Error
}

// ExpireOverdue 后台清扫：把所有超出限时+宽限的 in_progress 尝试置为 expired
func (r *AttemptRepository) ExpireOverdue(graceSeconds int) (int64, error) {
	now := time.Now()
	res := r.DB.Exec(`
		UPDATE attempts
		JOIN quizzes ON quizzes.id = attempts.quiz_id
		SET attempts.status = ?, attempts.end_time = ?
		WHERE attempts.status = ?
		  AND attempts.deleted_at IS NULL
		  AND quizzes.time_limit_minutes > 0
		  AND TIMESTAMPDIFF(SECOND, attempts.start_time, ?) > quizzes.time_limit_minutes * 60 + ?`,
		model.AttemptExpired, now, model.AttemptInProgress, now, graceSeconds)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
