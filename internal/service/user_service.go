package service

import (
	"errors"
	"formations_backend/internal/model"
	"formations_backend/internal/repository"
	"formations_backend/internal/rolemap"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
}

func NewUserService(userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository) *UserService {
	return &UserService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
	}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	return s.UserRepo.FindByID(userID)
}

// EnsureDisplayName reprend l'ensureProfile du front: upsert du nom
// affiché de l'utilisateur connecté.
func (s *UserService) EnsureDisplayName(userID uint, displayName string) error {
	return s.UserRepo.UpdateDisplayName(userID, displayName)
}

// Progression expose la progression du joueur avec le seuil du prochain
// niveau. Un utilisateur sans partie créditée part de zéro, niveau 1.
type Progression struct {
	XPTotal     int    `json:"xpTotal"`
	Level       int    `json:"level"`
	Tier        string `json:"tier"`
	NextLevelXP int    `json:"nextLevelXp"`
}

func (s *UserService) GetProgression(userID uint) (*Progression, error) {
	progress, err := s.ProgressRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Progression{
			XPTotal:     0,
			Level:       1,
			Tier:        rolemap.TierForLevel(1),
			NextLevelXP: rolemap.NextLevelXP(1),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Progression{
		XPTotal:     progress.XPTotal,
		Level:       progress.Level,
		Tier:        progress.Tier,
		NextLevelXP: rolemap.NextLevelXP(progress.Level),
	}, nil
}
