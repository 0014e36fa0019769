package repository

import (
	"errors"
	"formations_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RunRepository struct {
	DB *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{DB: db}
}

// FindProgress retourne nil sans erreur quand l'utilisateur n'a encore
// aucune progression: l'absence vaut un total de zéro.
func (r *RunRepository) FindProgress(userID uint) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.Where("user_id = ?", userID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// HasRecentRun vérifie l'existence d'une partie du même utilisateur, même
// pack et même difficulté dans la fenêtre anti-doublon.
func (r *RunRepository) HasRecentRun(userID uint, pack, difficulty string, since time.Time) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Run{}).
		Where("user_id = ? AND pack = ? AND difficulty = ? AND created_at >= ?",
			userID, pack, difficulty, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreditRun écrit la progression et la partie dans une seule transaction:
// si l'insertion du run échoue, le crédit d'XP est annulé avec elle.
func (r *RunRepository) CreditRun(progress *model.Progress, run *model.Run) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"xp_total", "level", "tier", "updated_at",
			}),
		}).Create(progress).Error
		if err != nil {
			return err
		}

		return tx.Create(run).Error
	})
}

func (r *RunRepository) RecordEvent(event *model.RunEvent) error {
	return r.DB.Create(event).Error
}

// PruneEventsBefore purge les traces par question plus vieilles que la
// date donnée. Les runs, eux, ne sont jamais supprimés.
func (r *RunRepository) PruneEventsBefore(cutoff time.Time) (int64, error) {
	res := r.DB.Where("created_at < ?", cutoff).Delete(&model.RunEvent{})
	return res.RowsAffected, res.Error
}
