package dao

import (
	"context"
	"errors"

	"atelier/atelier/sources/psql/models"
	"atelier/atelier/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionDAO struct {
	DB *gorm.DB
}

func NewSessionDAO(db *gorm.DB) *SessionDAO {
	return &SessionDAO{DB: db}
}

func (dao *SessionDAO) CreateSession(ctx context.Context, userID uuid.UUID, name string) (*models.Session, error) {
	session := models.Session{
		UserID:        userID,
		Name:          name,
		ChatHistory:   types.ChatHistory{},
		GeneratedCode: types.GeneratedCode{},
	}
	if err := dao.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessionsByUser returns the caller's sessions, most recently
// updated first, trimmed to the list-view projection.
func (dao *SessionDAO) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]models.SessionSummary, error) {
	var summaries []models.SessionSummary
	err := dao.DB.WithContext(ctx).
		Model(&models.Session{}).
		Select("id", "name", "created_at").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetSessionForUser scopes the lookup by owner. A session that exists
// but belongs to someone else is indistinguishable from one that does
// not exist: both come back (nil, nil).
func (dao *SessionDAO) GetSessionForUser(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := dao.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSessionForUser replaces name, transcript, and code wholesale.
// The owner id never changes; the WHERE clause pins it server-side.
func (dao *SessionDAO) UpdateSessionForUser(ctx context.Context, userID, sessionID uuid.UUID, name string, history types.ChatHistory, code types.GeneratedCode) (*models.Session, error) {
	result := dao.DB.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{
			"name":           name,
			"chat_history":   history,
			"generated_code": code,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return dao.GetSessionForUser(ctx, userID, sessionID)
}
