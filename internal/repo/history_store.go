package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mip/internal/models"
)

type HistoryStore struct{ db *gorm.DB }

func NewHistoryStore(db *gorm.DB) *HistoryStore { return &HistoryStore{db: db} }

func (s *HistoryStore) Create(ctx context.Context, h *models.History) error {
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return nil
}

// ListByUser — все записи пользователя в естественном порядке хранилища.
func (s *HistoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.History, error) {
	rows := []models.History{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return rows, nil
}

// Get ищет запись по id без фильтра по владельцу: владельца проверяет вызывающий.
func (s *HistoryStore) Get(ctx context.Context, id uuid.UUID) (*models.History, error) {
	var h models.History
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return &h, nil
}

// DeleteOwned удаляет только записи userID из ids; чужие id молча пропускаются.
func (s *HistoryStore) DeleteOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, keys).
		Delete(&models.History{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete history: %w", res.Error)
	}
	return res.RowsAffected, nil
}
