package portion

import (
	"testing"

	"github.com/pawfeeds/companion/internal/models"
)

func adultProfile() models.PetProfile {
	return models.PetProfile{
		Name:            "Dog A",
		AgeMonths:       24,
		WeightKg:        10,
		FoodKcalPer100g: 350,
		SexStatus:       models.SexNeutered,
		ActivityLevel:   models.ActivityNormal,
	}
}

func TestDailyGrams_ReferenceAdult(t *testing.T) {
	// RER = 70 * 10^0.75 ~= 393.6, k = 1.6, ~629.8 kcal/day -> ~180g of
	// 350 kcal/100g food.
	p := adultProfile()

	got := DailyGrams(p)
	if got != 180 {
		t.Errorf("DailyGrams = %d, want 180", got)
	}

	// Determinism: repeated calls return the same value.
	for i := 0; i < 5; i++ {
		if again := DailyGrams(p); again != got {
			t.Fatalf("DailyGrams not deterministic: %d then %d", got, again)
		}
	}
}

func TestDailyGrams_Multipliers(t *testing.T) {
	tests := []struct {
		name     string
		age      int
		sex      models.SexStatus
		activity models.ActivityLevel
		want     int
	}{
		// 393.64 kcal RER for a 10kg dog, 350 kcal/100g food.
		{"puppy under 4 months", 2, models.SexNeutered, models.ActivityNormal, 337},  // k=3.0
		{"junior 4-12 months", 8, models.SexNeutered, models.ActivityNormal, 225},    // k=2.0
		{"adult intact", 24, models.SexMale, models.ActivityNormal, 202},             // k=1.8
		{"adult sedentary", 24, models.SexMale, models.ActivitySedentary, 135},       // k=1.2
		{"adult neutered active", 24, models.SexNeutered, models.ActivityActive, 202}, // k=1.6+0.2
		{"adult intact active capped", 24, models.SexFemale, models.ActivityActive, 225}, // k=min(2.0, 2.0)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := adultProfile()
			p.AgeMonths = tt.age
			p.SexStatus = tt.sex
			p.ActivityLevel = tt.activity

			if got := DailyGrams(p); got != tt.want {
				t.Errorf("DailyGrams = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDailyGrams_NonPositiveInputs(t *testing.T) {
	weights := []float64{0, -3}
	for _, w := range weights {
		p := adultProfile()
		p.WeightKg = w
		if got := DailyGrams(p); got != 0 {
			t.Errorf("DailyGrams with weight %v = %d, want 0", w, got)
		}
	}

	kcals := []int{0, -100}
	for _, k := range kcals {
		p := adultProfile()
		p.FoodKcalPer100g = k
		if got := DailyGrams(p); got != 0 {
			t.Errorf("DailyGrams with kcal %d = %d, want 0", k, got)
		}
	}
}

func TestDistribute(t *testing.T) {
	if got := Distribute(180, 1); got != 180 {
		t.Errorf("Distribute(180, 1) = %d, want 180", got)
	}
	if got := Distribute(180, 2); got != 90 {
		t.Errorf("Distribute(180, 2) = %d, want 90", got)
	}
	if got := Distribute(180, 0); got != 0 {
		t.Errorf("Distribute(180, 0) = %d, want 0", got)
	}
	if got := Distribute(0, 3); got != 0 {
		t.Errorf("Distribute(0, 3) = %d, want 0", got)
	}
}

func TestRecalculate_Conservation(t *testing.T) {
	for enabled := 1; enabled <= 4; enabled++ {
		p := adultProfile()
		for i := 0; i < enabled; i++ {
			p.Schedules = append(p.Schedules, models.FeedingSchedule{Enabled: true})
		}
		p.Schedules = append(p.Schedules, models.FeedingSchedule{Enabled: false})

		Recalculate(&p)

		sum := 0
		for _, s := range p.Schedules {
			if s.Enabled {
				sum += s.PortionGrams
			} else if s.PortionGrams != 0 {
				t.Errorf("disabled schedule got portion %d, want 0", s.PortionGrams)
			}
		}

		diff := sum - p.DailyGrams
		if diff < 0 {
			diff = -diff
		}
		tolerance := enabled - 1
		if tolerance == 0 && diff != 0 {
			t.Errorf("enabled=1: sum %d != daily %d", sum, p.DailyGrams)
		} else if diff > tolerance {
			t.Errorf("enabled=%d: sum %d drifts from daily %d by %d (tolerance %d)",
				enabled, sum, p.DailyGrams, diff, tolerance)
		}
	}
}

func TestRecalculate_AllDisabled(t *testing.T) {
	p := adultProfile()
	p.Schedules = []models.FeedingSchedule{
		{Enabled: false}, {Enabled: false},
	}

	Recalculate(&p)

	for i, s := range p.Schedules {
		if s.PortionGrams != 0 {
			t.Errorf("schedule %d portion = %d, want 0", i, s.PortionGrams)
		}
	}
	if p.DailyGrams != 180 {
		t.Errorf("DailyGrams = %d, want 180 (daily requirement is independent of schedules)", p.DailyGrams)
	}
}
