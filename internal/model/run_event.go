package model

// RunEvent trace les événements par question, sans autorité de crédit.
// Écriture best-effort: un échec d'insertion n'échoue jamais la requête.
type RunEvent struct {
	UUIDBase
	UserID        uint    `gorm:"index;not null" json:"userId"`
	Pack          string  `gorm:"size:64" json:"pack"`
	ActivityID    string  `gorm:"size:64" json:"activityId"`
	Type          string  `gorm:"size:32" json:"type"`
	Difficulty    string  `gorm:"size:32" json:"difficulty"`
	Correct       int     `json:"correct"`
	Wrong         int     `json:"wrong"`
	StreakMax     int     `json:"streakMax"`
	ClientXP      float64 `json:"clientXp"`
	QuestionIndex int     `json:"questionIndex"`
}

func (RunEvent) TableName() string {
	return "run_events"
}
