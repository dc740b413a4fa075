package portion

import (
	"math"

	"github.com/pawfeeds/companion/internal/models"
)

// DailyGrams returns the grams of food a pet needs per day, derived from the
// resting energy requirement (RER = 70 * kg^0.75) scaled by a life-stage and
// activity multiplier. Non-positive weight or kcal density yields 0.
func DailyGrams(p models.PetProfile) int {
	if p.WeightKg <= 0 || p.FoodKcalPer100g <= 0 {
		return 0
	}

	rer := 70.0 * math.Pow(p.WeightKg, 0.75)
	dailyKcal := rer * multiplier(p)
	grams := dailyKcal / float64(p.FoodKcalPer100g) * 100.0

	return int(math.Round(grams))
}

func multiplier(p models.PetProfile) float64 {
	if p.AgeMonths < 4 {
		return 3.0
	}
	if p.AgeMonths <= 12 {
		return 2.0
	}

	// Adults: base multiplier from sex status, refined by activity level.
	k := 1.8
	if p.SexStatus == models.SexNeutered {
		k = 1.6
	}
	switch p.ActivityLevel {
	case models.ActivitySedentary:
		k = 1.2
	case models.ActivityActive:
		k = math.Min(k+0.2, 2.0)
	}
	return k
}

// Distribute splits a daily total evenly across the enabled schedule entries,
// rounding to the nearest gram. Zero enabled entries yields 0 per entry.
func Distribute(dailyGrams, enabledCount int) int {
	if enabledCount <= 0 || dailyGrams <= 0 {
		return 0
	}
	return int(math.Round(float64(dailyGrams) / float64(enabledCount)))
}

// Recalculate refreshes the profile's derived fields in place: the daily
// total and every schedule's per-entry share. Disabled entries get 0. Callers
// persist the result; calling again with the same inputs is a no-op.
func Recalculate(p *models.PetProfile) {
	p.DailyGrams = DailyGrams(*p)

	enabled := 0
	for _, s := range p.Schedules {
		if s.Enabled {
			enabled++
		}
	}

	per := Distribute(p.DailyGrams, enabled)
	for i := range p.Schedules {
		if p.Schedules[i].Enabled {
			p.Schedules[i].PortionGrams = per
		} else {
			p.Schedules[i].PortionGrams = 0
		}
	}
}
