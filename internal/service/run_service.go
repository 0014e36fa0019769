package service

import (
	"context"
	"formations_backend/internal/model"
	"formations_backend/internal/rolemap"
	"formations_backend/pkg/logger"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// DuplicateWindow est la fenêtre glissante de suppression des doublons.
// Garde souple: deux soumissions concurrentes peuvent la traverser toutes
// les deux, d'où le verrou par utilisateur en complément.
const DuplicateWindow = 2 * time.Minute

// Valeurs de repli pour les champs absents du payload client.
const (
	DefaultEventType  = "quiz"
	DefaultDifficulty = "debutant"
	DefaultPackID     = "unknown_pack"
	DefaultActivityID = "summary"
)

// activités par question: q1, Q23, q999...
var perQuestionActivity = regexp.MustCompile(`(?i)^q\d{1,3}$`)

// RunStore est la persistance consommée par le commit d'une partie.
type RunStore interface {
	FindProgress(userID uint) (*model.Progress, error)
	HasRecentRun(userID uint, pack, difficulty string, since time.Time) (bool, error)
	CreditRun(progress *model.Progress, run *model.Run) error
	RecordEvent(event *model.RunEvent) error
}

// RunLocker sérialise les commits d'un même utilisateur. ok=false signifie
// qu'un autre commit est en cours; une erreur signifie que le verrou est
// indisponible et que le service continue en mode dégradé.
type RunLocker interface {
	Acquire(ctx context.Context, userID uint) (release func(), ok bool, err error)
}

type RunService struct {
	Runs   RunStore
	Locker RunLocker
}

func NewRunService(runs RunStore, locker RunLocker) *RunService {
	return &RunService{Runs: runs, Locker: locker}
}

type ClientOutcome struct {
	Correct       int     `json:"correct"`
	Wrong         int     `json:"wrong"`
	StreakMax     int     `json:"streakMax"`
	XPEarned      float64 `json:"xpEarned"`
	QuestionIndex int     `json:"questionIndex"`
}

type CommitRunRequest struct {
	PackID        string        `json:"pack_id"`
	ActivityID    string        `json:"activity_id"`
	Type          string        `json:"type"`
	Difficulty    string        `json:"difficulty"`
	ClientOutcome ClientOutcome `json:"client_outcome"`
}

// CommitResult reprend le contrat plat de l'ancienne edge function.
// XPAwarded est un pointeur: toujours présent quand credited=true, y
// compris à 0, absent sur les réponses non créditées.
type CommitResult struct {
	Success   bool   `json:"success"`
	Credited  bool   `json:"credited"`
	XPAwarded *int   `json:"xp_awarded,omitempty"`
	Level     int    `json:"level,omitempty"`
	Tier      string `json:"tier,omitempty"`
}

// SkipReason explique une réponse credited=false.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipPerQuestion SkipReason = "per_question"
	SkipDuplicate   SkipReason = "duplicate"
	SkipLocked      SkipReason = "locked"
)

func applyDefaults(req *CommitRunRequest) {
	if req.Type == "" {
		req.Type = DefaultEventType
	}
	if req.Difficulty == "" {
		req.Difficulty = DefaultDifficulty
	}
	if req.PackID == "" {
		req.PackID = DefaultPackID
	}
	if req.ActivityID == "" {
		req.ActivityID = DefaultActivityID
	}
}

// isPerQuestion applique les deux règles de classification, exactement
// celles-ci: heuristique assumée approximative, ne pas durcir.
func isPerQuestion(req *CommitRunRequest) bool {
	if req.ClientOutcome.XPEarned == 0 && req.ClientOutcome.Correct == 1 {
		return true
	}
	return perQuestionActivity.MatchString(req.ActivityID)
}

// CommitRun classifie l'événement, calcule l'XP côté serveur, applique la
// fenêtre anti-doublon puis crédite progression et historique. Toute
// erreur retournée correspond à un échec de persistance (500 côté HTTP).
func (s *RunService) CommitRun(ctx context.Context, userID uint, req CommitRunRequest) (*CommitResult, SkipReason, error) {
	applyDefaults(&req)

	if isPerQuestion(&req) {
		s.trace(userID, &req)
		return &CommitResult{Success: true, Credited: false}, SkipPerQuestion, nil
	}

	if s.Locker != nil {
		release, ok, err := s.Locker.Acquire(ctx, userID)
		switch {
		case err != nil:
			// verrou indisponible: on retombe sur la seule fenêtre anti-doublon
			logger.Log.Warn("run lock unavailable, degraded duplicate protection",
				zap.Uint("userId", userID), zap.Error(err))
		case !ok:
			// un commit concurrent du même utilisateur est déjà en vol
			return &CommitResult{Success: true, Credited: false}, SkipLocked, nil
		default:
			defer release()
		}
	}

	since := time.Now().Add(-DuplicateWindow)
	duplicate, err := s.Runs.HasRecentRun(userID, req.PackID, req.Difficulty, since)
	if err != nil {
		return nil, SkipNone, err
	}
	if duplicate {
		return &CommitResult{Success: true, Credited: false}, SkipDuplicate, nil
	}

	// l'XP client est ignoré, le serveur recalcule
	xp := rolemap.ComputeXP(
		req.ClientOutcome.Correct,
		req.ClientOutcome.Wrong,
		req.ClientOutcome.StreakMax,
		req.Difficulty,
	)

	existing, err := s.Runs.FindProgress(userID)
	if err != nil {
		return nil, SkipNone, err
	}

	xpTotal := xp
	if existing != nil {
		xpTotal += existing.XPTotal
	}
	level := rolemap.LevelForXP(xpTotal)
	tier := rolemap.TierForLevel(level)

	progress := &model.Progress{
		UserID:  userID,
		XPTotal: xpTotal,
		Level:   level,
		Tier:    tier,
	}
	run := &model.Run{
		UserID:     userID,
		Pack:       req.PackID,
		Difficulty: req.Difficulty,
		Correct:    req.ClientOutcome.Correct,
		Wrong:      req.ClientOutcome.Wrong,
		StreakMax:  req.ClientOutcome.StreakMax,
		XPEarned:   xp,
		ActivityID: req.ActivityID,
	}

	if err := s.Runs.CreditRun(progress, run); err != nil {
		return nil, SkipNone, err
	}

	return &CommitResult{
		Success:   true,
		Credited:  true,
		XPAwarded: &xp,
		Level:     level,
		Tier:      tier,
	}, SkipNone, nil
}

// trace enregistre l'événement par question. Best-effort: l'échec est
// journalisé puis avalé, jamais remonté à l'appelant.
func (s *RunService) trace(userID uint, req *CommitRunRequest) {
	event := &model.RunEvent{
		UserID:        userID,
		Pack:          req.PackID,
		ActivityID:    req.ActivityID,
		Type:          req.Type,
		Difficulty:    req.Difficulty,
		Correct:       req.ClientOutcome.Correct,
		Wrong:         req.ClientOutcome.Wrong,
		StreakMax:     req.ClientOutcome.StreakMax,
		ClientXP:      req.ClientOutcome.XPEarned,
		QuestionIndex: req.ClientOutcome.QuestionIndex,
	}

	if err := s.Runs.RecordEvent(event); err != nil {
		logger.Log.Warn("per-question trace write failed",
			zap.Uint("userId", userID),
			zap.String("activityId", req.ActivityID),
			zap.Error(err))
	}
}
