package repository

import (
	"formations_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserID(userID uint) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.Where("user_id = ?", userID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// LeaderboardRow joint le total d'XP au nom affiché de l'utilisateur.
type LeaderboardRow struct {
	UserID      uint   `json:"userId"`
	DisplayName string `json:"displayName"`
	XPTotal     int    `json:"xpTotal"`
	Level       int    `json:"level,omitempty"`
	Tier        string `json:"tier,omitempty"`
}

// TopAllTime classe par XP cumulé de la table progress.
func (r *ProgressRepository) TopAllTime(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Model(&model.Progress{}).
		Select("progress.user_id, users.display_name, progress.xp_total, progress.level, progress.tier").
		Joins("JOIN users ON users.id = progress.user_id").
		Where("users.disabled = ?", false).
		Order("progress.xp_total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TopSince classe par XP gagné depuis une date, sommé sur l'historique runs.
func (r *ProgressRepository) TopSince(since time.Time, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Model(&model.Run{}).
		Select("runs.user_id, users.display_name, SUM(runs.xp_earned) AS xp_total").
		Joins("JOIN users ON users.id = runs.user_id").
		Where("runs.created_at >= ? AND users.disabled = ?", since, false).
		Group("runs.user_id, users.display_name").
		Order("xp_total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
