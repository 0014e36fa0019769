// Package rolemap porte les tables de progression partagées avec le
// front-end (config/rolemap.json). En cas de divergence, les valeurs
// serveur font foi.
package rolemap

import "math"

// Constantes XP d'une partie
const (
	BaseXPPerCorrect = 20
	StreakBonus      = 10
	WrongPenalty     = 5
	MaxXPPerRun      = 2000
)

// Seuils d'XP cumulés, ascendants. Le niveau N est atteint à Levels[N-1].
var Levels = []int{
	0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700,
	3250, 3850, 4500, 5200, 5950, 6750, 7600, 8500, 9450, 10400,
	11450, 12600, 13850, 15200, 16650, 18200, 19850, 21600, 23500, 25500,
	27600,
}

// Multiplicateurs par difficulté; difficulté inconnue => 1.
var DifficultyMultipliers = map[string]float64{
	"debutant":       1,
	"initie":         1.25,
	"multiplicateur": 1.5,
	"maitre":         2,
	"godlike":        3,
}

// Tier est une bande de niveaux inclusive.
type Tier struct {
	ID       string `json:"id"`
	MinLevel int    `json:"minLevel"`
	MaxLevel int    `json:"maxLevel"`
}

// Tiers, en ordre ascendant. La première bande qui contient le niveau gagne.
var Tiers = []Tier{
	{ID: "debutant", MinLevel: 1, MaxLevel: 5},
	{ID: "initie", MinLevel: 6, MaxLevel: 15},
	{ID: "multiplicateur", MinLevel: 16, MaxLevel: 22},
	{ID: "maitre", MinLevel: 23, MaxLevel: 30},
	{ID: "godlike", MinLevel: 31, MaxLevel: 999},
}

// LevelForXP retourne le niveau (1-based) pour un total d'XP: l'index le
// plus haut i tel que xp >= Levels[i], plus un.
func LevelForXP(xp int) int {
	level := 1
	for i := 0; i < len(Levels); i++ {
		if xp >= Levels[i] {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// TierForLevel retourne l'identifiant de bande pour un niveau.
func TierForLevel(level int) string {
	for _, t := range Tiers {
		if level >= t.MinLevel && level <= t.MaxLevel {
			return t.ID
		}
	}
	return Tiers[0].ID
}

// NextLevelXP retourne le seuil d'XP du niveau suivant, ou -1 au niveau max.
func NextLevelXP(level int) int {
	if level >= len(Levels) {
		return -1
	}
	return Levels[level]
}

// ComputeXP applique la formule serveur, le client n'a pas autorité:
// correct*base*mult + bonus de série - pénalité d'erreurs, borné à
// [0, MaxXPPerRun] puis arrondi à l'entier le plus proche.
func ComputeXP(correct, wrong, streakMax int, difficulty string) int {
	mult, ok := DifficultyMultipliers[difficulty]
	if !ok {
		mult = 1
	}

	xp := float64(correct) * BaseXPPerCorrect * mult
	if streakMax > 1 {
		xp += StreakBonus * float64(streakMax-1)
	}
	xp -= float64(wrong) * WrongPenalty

	if xp < 0 {
		xp = 0
	}
	if xp > MaxXPPerRun {
		xp = MaxXPPerRun
	}
	return int(math.Round(xp))
}
