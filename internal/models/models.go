package models

import "time"

// UnitSystem selects how weights and heights are displayed.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// FitnessGoal is the user's declared training objective.
type FitnessGoal string

const (
	GoalWeightLoss  FitnessGoal = "weight_loss"
	GoalMuscleGain  FitnessGoal = "muscle_gain"
	GoalMaintenance FitnessGoal = "maintenance"
	GoalCustom      FitnessGoal = "custom"
)

// ExperienceLevel is the user's self-reported training experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// SubscriptionPlan is the account's billing tier.
type SubscriptionPlan string

const (
	PlanFree           SubscriptionPlan = "free"
	PlanPremiumMonthly SubscriptionPlan = "premium_monthly"
	PlanPremiumYearly  SubscriptionPlan = "premium_yearly"
)

// MuscleGroup classifies exercises by primary muscle worked.
type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "chest"
	MuscleBack      MuscleGroup = "back"
	MuscleShoulders MuscleGroup = "shoulders"
	MuscleBiceps    MuscleGroup = "biceps"
	MuscleTriceps   MuscleGroup = "triceps"
	MuscleLegs      MuscleGroup = "legs"
	MuscleGlutes    MuscleGroup = "glutes"
	MuscleAbs       MuscleGroup = "abs"
	MuscleCardio    MuscleGroup = "cardio"
	MuscleFullBody  MuscleGroup = "full_body"
	MuscleOther     MuscleGroup = "other"
)

// EquipmentCategory classifies exercises by equipment used.
type EquipmentCategory string

const (
	EquipBarbell    EquipmentCategory = "barbell"
	EquipDumbbell   EquipmentCategory = "dumbbell"
	EquipMachine    EquipmentCategory = "machine"
	EquipCable      EquipmentCategory = "cable"
	EquipBodyweight EquipmentCategory = "bodyweight"
	EquipCardio     EquipmentCategory = "cardio"
	EquipOther      EquipmentCategory = "other"
)

// SetType distinguishes working sets from warm-ups and intensity techniques.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetWarmup  SetType = "warmup"
	SetDropset SetType = "dropset"
	SetFailure SetType = "failure"
)

// PhotoAngle is the pose category of a progress photo.
type PhotoAngle string

const (
	PhotoFront PhotoAngle = "front"
	PhotoSide  PhotoAngle = "side"
	PhotoBack  PhotoAngle = "back"
)

// Profile holds the editable part of an account: onboarding answers and the
// denormalized current body weight.
type Profile struct {
	Name            string          `json:"name"`
	Age             *int            `json:"age"`
	HeightCm        *float64        `json:"height"`
	WeightKg        *float64        `json:"weight"`
	Goal            FitnessGoal     `json:"goal"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	Units           UnitSystem      `json:"units"`
}

// Account is an authenticated user with their embedded profile.
type Account struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	DisplayName  string           `json:"displayName"`
	PhotoURL     string           `json:"photoUrl,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Profile      Profile          `json:"profile"`
	Subscription SubscriptionPlan `json:"subscription"`
}

// SetEntry is one set inside an exercise entry. SetNumber is 1-based and kept
// contiguous: removing a set renumbers the rest.
type SetEntry struct {
	ID          string   `json:"id"`
	SetNumber   int      `json:"setNumber"`
	Reps        *int     `json:"reps"`
	WeightKg    *float64 `json:"weight"`
	IsCompleted bool     `json:"isCompleted"`
	Type        SetType  `json:"type"`
	RPE         *int     `json:"rpe,omitempty"`
}

// ExerciseEntry is one exercise inside a workout. Name and muscle group are
// denormalized from the catalog so history stays readable if the catalog
// entry is later edited.
type ExerciseEntry struct {
	ID               string      `json:"id"`
	ExerciseID       string      `json:"exerciseId"`
	ExerciseName     string      `json:"exerciseName"`
	MuscleGroup      MuscleGroup `json:"muscleGroup"`
	Sets             []SetEntry  `json:"sets"`
	Notes            string      `json:"notes,omitempty"`
	RestTimerSeconds int         `json:"restTimerSeconds"`
	Order            int         `json:"order"`
}

// Workout is one logged gym session. Duration and CaloriesEstimate are only
// populated once IsCompleted is true. Date is the calendar day (YYYY-MM-DD).
type Workout struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Name             string          `json:"name"`
	Date             string          `json:"date"`
	StartTime        time.Time       `json:"startTime"`
	EndTime          *time.Time      `json:"endTime,omitempty"`
	DurationSeconds  *int            `json:"duration,omitempty"`
	Exercises        []ExerciseEntry `json:"exercises"`
	Notes            string          `json:"notes,omitempty"`
	CaloriesEstimate *int            `json:"caloriesEstimate,omitempty"`
	IsCompleted      bool            `json:"isCompleted"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Exercise is a catalog entry, either shipped with the app or user-created.
type Exercise struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	MuscleGroup  MuscleGroup       `json:"muscleGroup"`
	Category     EquipmentCategory `json:"category"`
	IsCustom     bool              `json:"isCustom"`
	Description  string            `json:"description,omitempty"`
	Instructions []string          `json:"instructions,omitempty"`
}

// BodyWeight is a timestamped body weight observation in kg.
type BodyWeight struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	WeightKg float64   `json:"weight"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes,omitempty"`
}

// BodyMeasurement is a timestamped set of tape measurements in cm.
type BodyMeasurement struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	Date   time.Time `json:"date"`
	Chest  *float64  `json:"chest,omitempty"`
	Arms   *float64  `json:"arms,omitempty"`
	Waist  *float64  `json:"waist,omitempty"`
	Legs   *float64  `json:"legs,omitempty"`
	Notes  string    `json:"notes,omitempty"`
}

// ProgressPhoto references an uploaded photo by its blob URI.
type ProgressPhoto struct {
	ID       string     `json:"id"`
	UserID   string     `json:"userId"`
	URI      string     `json:"uri"`
	Date     time.Time  `json:"date"`
	Category PhotoAngle `json:"category"`
	Notes    string     `json:"notes,omitempty"`
}

// PersonalRecord is the best known lift for one exercise: at most one record
// per exercise per account, replaced whenever a completed set beats its
// estimated one-rep max.
type PersonalRecord struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	ExerciseID   string  `json:"exerciseId"`
	ExerciseName string  `json:"exerciseName"`
	WeightKg     float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Date         string  `json:"date"`
	OneRepMax    float64 `json:"oneRepMax"`
}

// Goal is a user-defined target with optional progress tracking.
type Goal struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Type         FitnessGoal `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	TargetValue  *float64    `json:"targetValue,omitempty"`
	CurrentValue *float64    `json:"currentValue,omitempty"`
	Unit         string      `json:"unit,omitempty"`
	Deadline     *time.Time  `json:"deadline,omitempty"`
	IsCompleted  bool        `json:"isCompleted"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// TemplateExercise is one planned exercise inside a workout template.
type TemplateExercise struct {
	ExerciseID       string      `json:"exerciseId"`
	ExerciseName     string      `json:"exerciseName"`
	MuscleGroup      MuscleGroup `json:"muscleGroup"`
	TargetSets       int         `json:"targetSets"`
	TargetReps       int         `json:"targetReps"`
	RestTimerSeconds int         `json:"restTimerSeconds"`
	Order            int         `json:"order"`
}

// WorkoutTemplate is a reusable workout plan.
type WorkoutTemplate struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Name      string             `json:"name"`
	Exercises []TemplateExercise `json:"exercises"`
	CreatedAt time.Time          `json:"createdAt"`
	LastUsed  *time.Time         `json:"lastUsed,omitempty"`
	TimesUsed int                `json:"timesUsed"`
}

// NotificationSettings is the per-account reminder configuration.
// ReminderDays uses weekday numbers 0-6 (Sunday-Saturday).
type NotificationSettings struct {
	WorkoutReminders     bool   `json:"workoutReminders"`
	ReminderTime         string `json:"reminderTime"`
	ReminderDays         []int  `json:"reminderDays"`
	GoalProgressAlerts   bool   `json:"goalProgressAlerts"`
	PersonalRecordAlerts bool   `json:"personalRecordAlerts"`
}

// DefaultNotificationSettings returns the settings applied to new accounts:
// weekday reminders at 09:00 with all alert types on.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		WorkoutReminders:     true,
		ReminderTime:         "09:00",
		ReminderDays:         []int{1, 2, 3, 4, 5},
		GoalProgressAlerts:   true,
		PersonalRecordAlerts: true,
	}
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Name            *string
	Age             *int
	HeightCm        *float64
	WeightKg        *float64
	Goal            *FitnessGoal
	ExperienceLevel *ExperienceLevel
	Units           *UnitSystem
}

// Apply merges the patch into p.
func (patch ProfilePatch) Apply(p *Profile) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Age != nil {
		p.Age = patch.Age
	}
	if patch.HeightCm != nil {
		p.HeightCm = patch.HeightCm
	}
	if patch.WeightKg != nil {
		p.WeightKg = patch.WeightKg
	}
	if patch.Goal != nil {
		p.Goal = *patch.Goal
	}
	if patch.ExperienceLevel != nil {
		p.ExperienceLevel = *patch.ExperienceLevel
	}
	if patch.Units != nil {
		p.Units = *patch.Units
	}
}

// GoalPatch is a partial goal update; nil fields are left unchanged.
type GoalPatch struct {
	Title        *string
	Description  *string
	TargetValue  *float64
	CurrentValue *float64
	Unit         *string
	Deadline     *time.Time
	IsCompleted  *bool
}

// Apply merges the patch into g.
func (patch GoalPatch) Apply(g *Goal) {
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.TargetValue != nil {
		g.TargetValue = patch.TargetValue
	}
	if patch.CurrentValue != nil {
		g.CurrentValue = patch.CurrentValue
	}
	if patch.Unit != nil {
		g.Unit = *patch.Unit
	}
	if patch.Deadline != nil {
		g.Deadline = patch.Deadline
	}
	if patch.IsCompleted != nil {
		g.IsCompleted = *patch.IsCompleted
	}
}

// SetPatch is a partial set update; nil fields are left unchanged.
type SetPatch struct {
	Reps        *int
	WeightKg    *float64
	IsCompleted *bool
	Type        *SetType
	RPE         *int
}

// Apply merges the patch into s.
func (patch SetPatch) Apply(s *SetEntry) {
	if patch.Reps != nil {
		s.Reps = patch.Reps
	}
	if patch.WeightKg != nil {
		s.WeightKg = patch.WeightKg
	}
	if patch.IsCompleted != nil {
		s.IsCompleted = *patch.IsCompleted
	}
	if patch.Type != nil {
		s.Type = *patch.Type
	}
	if patch.RPE != nil {
		s.RPE = patch.RPE
	}
}
