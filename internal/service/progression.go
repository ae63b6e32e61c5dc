package service

import (
	"sort"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

// LevelInfo describes where an experience total sits in the level table.
type LevelInfo struct {
	Level           int     `json:"level"`
	Title           string  `json:"title"`
	NextLevelXP     int     `json:"nextLevelXp"`
	ProgressPercent float64 `json:"progressPercent"`
}

// ComputeLevelInfo locates the highest tier whose threshold is at or below xp
// and reports the progress towards the next tier. Beyond the final tier the
// progress is clamped to 100%.
func ComputeLevelInfo(levels []entities.LevelTier, xp int) LevelInfo {
	tiers := sortedTiers(levels)
	if len(tiers) == 0 {
		return LevelInfo{}
	}

	idx := tierIndex(tiers, xp)
	current := tiers[idx]

	if idx == len(tiers)-1 {
		return LevelInfo{
			Level:           current.Level,
			Title:           current.Title,
			NextLevelXP:     current.MinXP,
			ProgressPercent: 100,
		}
	}

	next := tiers[idx+1]
	span := next.MinXP - current.MinXP
	progress := 0.0
	if span > 0 {
		progress = float64(xp-current.MinXP) / float64(span) * 100
	}
	if progress < 0 {
		progress = 0
	}

	return LevelInfo{
		Level:           current.Level,
		Title:           current.Title,
		NextLevelXP:     next.MinXP,
		ProgressPercent: progress,
	}
}

// CheckLevelUp returns the tier reached by newXP when the two totals fall in
// different tiers, or nil when no boundary was crossed.
func CheckLevelUp(levels []entities.LevelTier, oldXP, newXP int) *entities.LevelTier {
	tiers := sortedTiers(levels)
	if len(tiers) == 0 {
		return nil
	}

	oldIdx := tierIndex(tiers, oldXP)
	newIdx := tierIndex(tiers, newXP)
	if oldIdx == newIdx {
		return nil
	}

	tier := tiers[newIdx]
	return &tier
}

// tierIndex returns the index of the highest tier with MinXP <= xp. Totals
// below the first threshold map to the first tier.
func tierIndex(tiers []entities.LevelTier, xp int) int {
	idx := 0
	for i, t := range tiers {
		if t.MinXP <= xp {
			idx = i
		}
	}
	return idx
}

// sortedTiers returns the table ordered by ascending threshold.
func sortedTiers(levels []entities.LevelTier) []entities.LevelTier {
	tiers := append([]entities.LevelTier(nil), levels...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinXP < tiers[j].MinXP })
	return tiers
}
