package model

import "time"

// Run est l'historique immuable des parties créditées. Jamais mis à jour
// ni supprimé une fois inséré.
type Run struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index:idx_runs_user_pack;not null" json:"userId"`
	Pack       string    `gorm:"index:idx_runs_user_pack;size:64;not null" json:"pack"`
	Difficulty string    `gorm:"size:32;not null" json:"difficulty"`
	Correct    int       `gorm:"not null" json:"correct"`
	Wrong      int       `gorm:"not null" json:"wrong"`
	StreakMax  int       `gorm:"not null" json:"streakMax"`
	XPEarned   int       `gorm:"not null" json:"xpEarned"`
	ActivityID string    `gorm:"size:64" json:"activityId"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (Run) TableName() string {
	return "runs"
}
