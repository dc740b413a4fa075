package models

import "time"

type SexStatus string

const (
	SexNeutered SexStatus = "neutered"
	SexMale     SexStatus = "male"
	SexFemale   SexStatus = "female"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityNormal    ActivityLevel = "normal"
	ActivityActive    ActivityLevel = "active"
)

// FeedingSchedule is one recurring feeding occurrence for a pet profile.
type FeedingSchedule struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	TimeOfDay     string         `json:"time_of_day"` // HH:MM format
	Enabled       bool           `json:"enabled"`
	Days          []time.Weekday `json:"days"`
	LastTriggered string         `json:"last_triggered,omitempty"` // YYYY-MM-DD format
	PortionGrams  int            `json:"portion_grams"`
}

// RunsOn reports whether the schedule is active on the given weekday.
func (s FeedingSchedule) RunsOn(day time.Weekday) bool {
	for _, d := range s.Days {
		if d == day {
			return true
		}
	}
	return false
}

// PetProfile holds the feeding parameters for one animal assigned to a slot.
type PetProfile struct {
	Name                 string            `json:"name"`
	AgeMonths            int               `json:"age_months"`
	WeightKg             float64           `json:"weight_kg"`
	FoodKcalPer100g      int               `json:"food_kcal_per_100g"`
	SexStatus            SexStatus         `json:"sex_status"`
	ActivityLevel        ActivityLevel     `json:"activity_level"`
	DailyGrams           int               `json:"daily_grams"`            // derived, recomputed on input change
	PortionOverrideGrams int               `json:"portion_override_grams"` // manual per-feed override, 0 = use computed
	Schedules            []FeedingSchedule `json:"schedules"`
}

// PortionPerFeed returns the grams to dispense for one occurrence: the manual
// override when set, otherwise the schedule's computed share.
func (p PetProfile) PortionPerFeed(s FeedingSchedule) int {
	if p.PortionOverrideGrams > 0 {
		return p.PortionOverrideGrams
	}
	return s.PortionGrams
}

// FeederSlot is one logical feeding station. A physical unit hosts up to two
// slots sharing a single feeder-brain.
type FeederSlot struct {
	ID                   int          `json:"id"`
	Name                 string       `json:"name"`
	DeviceID             string       `json:"device_id"`
	CameraAddress        string       `json:"camera_address"`
	FeederAddress        string       `json:"feeder_address"`
	Online               bool         `json:"online"` // volatile, refreshed every scan/dispatch
	ContainerWeightGrams float64      `json:"container_weight_grams"`
	Profiles             []PetProfile `json:"profiles"`
}

// HasFeederAddress reports whether the slot has a usable LAN address for its
// feeder-brain. Legacy records use "N/A" as a placeholder for unknown.
func (f FeederSlot) HasFeederAddress() bool {
	return f.FeederAddress != "" && f.FeederAddress != "N/A"
}
