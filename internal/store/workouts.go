package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meltforce/gymtrack/internal/analysis"
	"github.com/meltforce/gymtrack/internal/cache"
	"github.com/meltforce/gymtrack/internal/models"
)

var (
	// ErrNotSignedIn is returned by mutations outside an authenticated
	// session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrNoActiveWorkout is returned by session edits when no workout is in
	// progress.
	ErrNoActiveWorkout = errors.New("no workout in progress")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)

// defaultRestSeconds is the rest timer assigned to newly added exercises.
const defaultRestSeconds = 90

// StartWorkout begins a new session. An already-active session is replaced;
// nothing is persisted until the session finishes.
func (s *Store) StartWorkout(name string) (*models.Workout, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	now := s.now()
	w := &models.Workout{
		ID:        uuid.NewString(),
		UserID:    s.account.ID,
		Name:      name,
		Date:      now.Format(analysis.DateLayout),
		StartTime: now,
		Exercises: []models.ExerciseEntry{},
		CreatedAt: now,
	}
	s.currentWorkout = w
	out := *w
	s.mu.Unlock()

	s.publish()
	return &out, nil
}

// StartWorkoutFromTemplate begins a session pre-filled from a template:
// every planned exercise gets its target number of sets with the target rep
// count filled in. The template's usage counters are bumped.
func (s *Store) StartWorkoutFromTemplate(templateID string) (*models.Workout, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	var tmpl *models.WorkoutTemplate
	for i := range s.templates {
		if s.templates[i].ID == templateID {
			tmpl = &s.templates[i]
			break
		}
	}
	if tmpl == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("template %s: %w", templateID, ErrNotFound)
	}

	now := s.now()
	w := &models.Workout{
		ID:        uuid.NewString(),
		UserID:    s.account.ID,
		Name:      tmpl.Name,
		Date:      now.Format(analysis.DateLayout),
		StartTime: now,
		Exercises: make([]models.ExerciseEntry, 0, len(tmpl.Exercises)),
		CreatedAt: now,
	}
	for i, te := range tmpl.Exercises {
		entry := models.ExerciseEntry{
			ID:               uuid.NewString(),
			ExerciseID:       te.ExerciseID,
			ExerciseName:     te.ExerciseName,
			MuscleGroup:      te.MuscleGroup,
			Sets:             make([]models.SetEntry, 0, te.TargetSets),
			RestTimerSeconds: te.RestTimerSeconds,
			Order:            i,
		}
		for n := 1; n <= te.TargetSets; n++ {
			reps := te.TargetReps
			entry.Sets = append(entry.Sets, models.SetEntry{
				ID:        uuid.NewString(),
				SetNumber: n,
				Reps:      &reps,
				Type:      models.SetNormal,
			})
		}
		w.Exercises = append(w.Exercises, entry)
	}

	tmpl.TimesUsed++
	used := now
	tmpl.LastUsed = &used
	updated := *tmpl

	s.currentWorkout = w
	s.persist(cache.NSTemplates, s.templates)
	gen := s.gen
	out := *w
	s.mu.Unlock()

	s.publish()
	s.remote("template usage", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertTemplate(ctx, updated)
	})
	return &out, nil
}

// AddExerciseToWorkout appends a catalog exercise to the active session.
func (s *Store) AddExerciseToWorkout(exercise models.Exercise) (*models.ExerciseEntry, error) {
	s.mu.Lock()
	if s.currentWorkout == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveWorkout
	}

	entry := models.ExerciseEntry{
		ID:               uuid.NewString(),
		ExerciseID:       exercise.ID,
		ExerciseName:     exercise.Name,
		MuscleGroup:      exercise.MuscleGroup,
		Sets:             []models.SetEntry{},
		RestTimerSeconds: defaultRestSeconds,
		Order:            len(s.currentWorkout.Exercises),
	}
	s.currentWorkout.Exercises = append(s.currentWorkout.Exercises, entry)
	s.mu.Unlock()

	s.publish()
	return &entry, nil
}

// RemoveExerciseFromWorkout drops an exercise entry and renumbers the
// remaining entries' order.
func (s *Store) RemoveExerciseFromWorkout(entryID string) error {
	s.mu.Lock()
	if s.currentWorkout == nil {
		s.mu.Unlock()
		return ErrNoActiveWorkout
	}

	kept := s.currentWorkout.Exercises[:0]
	found := false
	for _, e := range s.currentWorkout.Exercises {
		if e.ID == entryID {
			found = true
			continue
		}
		e.Order = len(kept)
		kept = append(kept, e)
	}
	s.currentWorkout.Exercises = kept
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("exercise entry %s: %w", entryID, ErrNotFound)
	}
	s.publish()
	return nil
}

func (s *Store) findEntry(entryID string) (*models.ExerciseEntry, error) {
	if s.currentWorkout == nil {
		return nil, ErrNoActiveWorkout
	}
	for i := range s.currentWorkout.Exercises {
		if s.currentWorkout.Exercises[i].ID == entryID {
			return &s.currentWorkout.Exercises[i], nil
		}
	}
	return nil, fmt.Errorf("exercise entry %s: %w", entryID, ErrNotFound)
}

// AddSet appends a set to an exercise entry, numbered after the last one.
func (s *Store) AddSet(entryID string) (*models.SetEntry, error) {
	s.mu.Lock()
	entry, err := s.findEntry(entryID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	set := models.SetEntry{
		ID:        uuid.NewString(),
		SetNumber: len(entry.Sets) + 1,
		Type:      models.SetNormal,
	}
	entry.Sets = append(entry.Sets, set)
	s.mu.Unlock()

	s.publish()
	return &set, nil
}

// UpdateSet applies a partial edit to one set.
func (s *Store) UpdateSet(entryID, setID string, patch models.SetPatch) error {
	s.mu.Lock()
	entry, err := s.findEntry(entryID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	for i := range entry.Sets {
		if entry.Sets[i].ID == setID {
			patch.Apply(&entry.Sets[i])
			s.mu.Unlock()
			s.publish()
			return nil
		}
	}
	s.mu.Unlock()
	return fmt.Errorf("set %s: %w", setID, ErrNotFound)
}

// RemoveSet deletes a set and renumbers the remainder so positions stay
// contiguous from 1.
func (s *Store) RemoveSet(entryID, setID string) error {
	s.mu.Lock()
	entry, err := s.findEntry(entryID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	kept := entry.Sets[:0]
	found := false
	for _, set := range entry.Sets {
		if set.ID == setID {
			found = true
			continue
		}
		set.SetNumber = len(kept) + 1
		kept = append(kept, set)
	}
	entry.Sets = kept
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("set %s: %w", setID, ErrNotFound)
	}
	s.publish()
	return nil
}

// SetWorkoutNotes replaces the active session's notes.
func (s *Store) SetWorkoutNotes(notes string) error {
	s.mu.Lock()
	if s.currentWorkout == nil {
		s.mu.Unlock()
		return ErrNoActiveWorkout
	}
	s.currentWorkout.Notes = notes
	s.mu.Unlock()

	s.publish()
	return nil
}

// CancelWorkout discards the active session without recording anything.
func (s *Store) CancelWorkout() {
	s.mu.Lock()
	s.currentWorkout = nil
	s.mu.Unlock()
	s.publish()
}

// FinishWorkout finalizes the active session: computes duration and the
// calorie estimate, prepends it to history, and recomputes personal records
// from its completed sets.
func (s *Store) FinishWorkout() (*models.Workout, error) {
	s.mu.Lock()
	if s.currentWorkout == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveWorkout
	}

	w := s.currentWorkout
	end := s.now()
	duration := int(end.Sub(w.StartTime).Seconds())
	calories := analysis.EstimateWorkoutCalories(*w, duration)

	w.EndTime = &end
	w.DurationSeconds = &duration
	w.CaloriesEstimate = &calories
	w.IsCompleted = true

	s.workouts = append([]models.Workout{*w}, s.workouts...)
	s.currentWorkout = nil
	s.persist(cache.NSWorkouts, s.workouts)

	changed := s.recomputeRecords(*w)
	if len(changed) > 0 {
		s.persist(cache.NSRecords, s.records)
	}

	gen := s.gen
	finished := *w
	s.mu.Unlock()

	s.publish()
	s.remote("finish workout", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertWorkout(ctx, finished)
	})
	for _, pr := range changed {
		record := pr
		s.remote("personal record", gen, func(ctx context.Context) error {
			return s.backend.Data().UpsertPersonalRecord(ctx, record)
		})
	}
	return &finished, nil
}

// recomputeRecords scans the finished session's completed sets and replaces
// any personal record whose estimated one-rep max is beaten. Caller holds
// the lock. Returns the records that changed.
func (s *Store) recomputeRecords(w models.Workout) []models.PersonalRecord {
	var changed []models.PersonalRecord
	for _, entry := range w.Exercises {
		best := -1.0
		var bestSet *models.SetEntry
		for i := range entry.Sets {
			set := entry.Sets[i]
			if !set.IsCompleted || set.Reps == nil || set.WeightKg == nil || *set.Reps <= 0 {
				continue
			}
			orm := analysis.OneRepMax(*set.WeightKg, *set.Reps)
			if orm > best {
				best = orm
				bestSet = &entry.Sets[i]
			}
		}
		if bestSet == nil {
			continue
		}

		existing := -1
		for i := range s.records {
			if s.records[i].ExerciseID == entry.ExerciseID {
				existing = i
				break
			}
		}
		if existing >= 0 && s.records[existing].OneRepMax >= best {
			continue
		}

		record := models.PersonalRecord{
			ID:           uuid.NewString(),
			UserID:       w.UserID,
			ExerciseID:   entry.ExerciseID,
			ExerciseName: entry.ExerciseName,
			WeightKg:     *bestSet.WeightKg,
			Reps:         *bestSet.Reps,
			Date:         w.Date,
			OneRepMax:    best,
		}
		if existing >= 0 {
			s.records[existing] = record
		} else {
			s.records = append(s.records, record)
		}
		changed = append(changed, record)
	}
	return changed
}

// DeleteWorkout removes a finished session from history.
func (s *Store) DeleteWorkout(id string) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	kept := s.workouts[:0]
	found := false
	for _, w := range s.workouts {
		if w.ID == id {
			found = true
			continue
		}
		kept = append(kept, w)
	}
	if !found {
		s.workouts = kept
		s.mu.Unlock()
		return fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	s.workouts = kept
	s.persist(cache.NSWorkouts, s.workouts)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("delete workout", gen, func(ctx context.Context) error {
		return s.backend.Data().DeleteWorkout(ctx, id)
	})
	return nil
}

// AddCustomExercise appends a user-defined catalog entry.
func (s *Store) AddCustomExercise(name string, group models.MuscleGroup, category models.EquipmentCategory, description string) (*models.Exercise, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	e := models.Exercise{
		ID:          uuid.NewString(),
		Name:        name,
		MuscleGroup: group,
		Category:    category,
		IsCustom:    true,
		Description: description,
	}
	s.exercises = append(s.exercises, e)
	s.persist(cache.NSExercises, s.exercises)
	gen := s.gen
	accountID := s.account.ID
	s.mu.Unlock()

	s.publish()
	s.remote("custom exercise", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertCustomExercise(ctx, accountID, e)
	})
	return &e, nil
}
