package store

import "github.com/meltforce/gymtrack/internal/models"

// Getters return copies so callers can iterate without holding the store's
// lock.

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Account returns the signed-in account, or nil when unauthenticated.
func (s *Store) Account() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil
	}
	a := *s.account
	return &a
}

// CurrentWorkout returns the in-progress session, or nil when none is
// active.
func (s *Store) CurrentWorkout() *models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentWorkout == nil {
		return nil
	}
	w := *s.currentWorkout
	return &w
}

func (s *Store) Workouts() []models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Workout(nil), s.workouts...)
}

// Exercises returns the full catalog: built-in entries plus the account's
// custom ones.
func (s *Store) Exercises() []models.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Exercise(nil), s.exercises...)
}

func (s *Store) BodyWeights() []models.BodyWeight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BodyWeight(nil), s.bodyWeights...)
}

func (s *Store) Measurements() []models.BodyMeasurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BodyMeasurement(nil), s.measurements...)
}

func (s *Store) ProgressPhotos() []models.ProgressPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProgressPhoto(nil), s.photos...)
}

func (s *Store) PersonalRecords() []models.PersonalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PersonalRecord(nil), s.records...)
}

func (s *Store) Goals() []models.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Goal(nil), s.goals...)
}

func (s *Store) Templates() []models.WorkoutTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WorkoutTemplate(nil), s.templates...)
}

func (s *Store) NotificationSettings() models.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifications
}

func (s *Store) Onboarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboarded
}

func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}
