package model

import "time"

// Progress accumule l'XP d'un utilisateur. Le niveau et le palier sont
// toujours dérivés de XPTotal, jamais écrits indépendamment.
type Progress struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	XPTotal   int       `gorm:"not null;default:0" json:"xpTotal"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	Tier      string    `gorm:"size:32;not null" json:"tier"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Progress) TableName() string {
	return "progress"
}
