package services

import (
	"errors"
	"log"

	"github.com/bdvbs4e/backtriviapp/internal/models"

	"gorm.io/gorm"
)

type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

func validateQuestion(q *models.Question) error {
	if len(q.Options) < 2 || len(q.Options) > 5 {
		return errors.New("question must have between 2 and 5 options")
	}
	seen := make(map[string]bool, len(q.Options))
	correctFound := false
	for _, opt := range q.Options {
		if seen[opt] {
			return errors.New("options must be distinct")
		}
		seen[opt] = true
		if opt == q.CorrectAnswer {
			correctFound = true
		}
	}
	if !correctFound {
		return errors.New("correct answer must be one of the options")
	}
	return nil
}

func (s *QuestionService) CreateQuestion(q *models.Question) error {
	if err := validateQuestion(q); err != nil {
		return err
	}
	return s.db.Create(q).Error
}

func (s *QuestionService) GetQuestion(id uint) (*models.Question, error) {
	var q models.Question
	if err := s.db.First(&q, id).Error; err != nil {
		return nil, errors.New("question not found")
	}
	return &q, nil
}

func (s *QuestionService) ListQuestions() ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.Order("category ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *QuestionService) UpdateQuestion(id uint, q *models.Question) (*models.Question, error) {
	var existing models.Question
	if err := s.db.First(&existing, id).Error; err != nil {
		return nil, errors.New("question not found")
	}

	existing.Category = q.Category
	existing.Text = q.Text
	existing.Options = q.Options
	existing.CorrectAnswer = q.CorrectAnswer
	if err := validateQuestion(&existing); err != nil {
		return nil, err
	}
	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	res := s.db.Delete(&models.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("question not found")
	}
	return nil
}

// SampleRandom draws n random questions for one game.
func (s *QuestionService) SampleRandom(n int) ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.Order("RANDOM()").Limit(n).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// RecordOutcome bumps a question's usage counters after a scored round.
// Failures only log: counters are best-effort telemetry.
func (s *QuestionService) RecordOutcome(questionID uint, correctAnswers int) {
	err := s.db.Model(&models.Question{}).Where("id = ?", questionID).
		Updates(map[string]interface{}{
			"times_asked":   gorm.Expr("times_asked + 1"),
			"times_correct": gorm.Expr("times_correct + ?", correctAnswers),
		}).Error
	if err != nil {
		log.Printf("questions: failed to record outcome for %d: %v", questionID, err)
	}
}
