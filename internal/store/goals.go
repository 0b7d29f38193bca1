package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meltforce/gymtrack/internal/cache"
	"github.com/meltforce/gymtrack/internal/models"
)

// AddGoal prepends a new goal.
func (s *Store) AddGoal(g models.Goal) (*models.Goal, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	g.ID = uuid.NewString()
	g.UserID = s.account.ID
	g.CreatedAt = s.now()
	s.goals = append([]models.Goal{g}, s.goals...)
	s.persist(cache.NSGoals, s.goals)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("goal", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertGoal(ctx, g)
	})
	return &g, nil
}

// UpdateGoal applies a partial edit to one goal.
func (s *Store) UpdateGoal(id string, patch models.GoalPatch) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	var updated *models.Goal
	for i := range s.goals {
		if s.goals[i].ID == id {
			patch.Apply(&s.goals[i])
			g := s.goals[i]
			updated = &g
			break
		}
	}
	if updated == nil {
		s.mu.Unlock()
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	s.persist(cache.NSGoals, s.goals)
	gen := s.gen
	goal := *updated
	s.mu.Unlock()

	s.publish()
	s.remote("update goal", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertGoal(ctx, goal)
	})
	return nil
}

// DeleteGoal removes a goal.
func (s *Store) DeleteGoal(id string) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	kept := s.goals[:0]
	found := false
	for _, g := range s.goals {
		if g.ID == id {
			found = true
			continue
		}
		kept = append(kept, g)
	}
	s.goals = kept
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	s.persist(cache.NSGoals, s.goals)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("delete goal", gen, func(ctx context.Context) error {
		return s.backend.Data().DeleteGoal(ctx, id)
	})
	return nil
}

// SaveTemplate stores a reusable workout plan. A template with a known id is
// replaced; a new one is prepended.
func (s *Store) SaveTemplate(t models.WorkoutTemplate) (*models.WorkoutTemplate, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	t.UserID = s.account.ID
	if t.ID == "" {
		t.ID = uuid.NewString()
		t.CreatedAt = s.now()
		s.templates = append([]models.WorkoutTemplate{t}, s.templates...)
	} else {
		replaced := false
		for i := range s.templates {
			if s.templates[i].ID == t.ID {
				s.templates[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			s.templates = append([]models.WorkoutTemplate{t}, s.templates...)
		}
	}
	s.persist(cache.NSTemplates, s.templates)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("template", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertTemplate(ctx, t)
	})
	return &t, nil
}

// DeleteTemplate removes a workout plan.
func (s *Store) DeleteTemplate(id string) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	kept := s.templates[:0]
	found := false
	for _, t := range s.templates {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	s.templates = kept
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	s.persist(cache.NSTemplates, s.templates)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("delete template", gen, func(ctx context.Context) error {
		return s.backend.Data().DeleteTemplate(ctx, id)
	})
	return nil
}

// UpdateNotificationSettings replaces the reminder configuration.
func (s *Store) UpdateNotificationSettings(settings models.NotificationSettings) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	s.notifications = settings
	s.persist(cache.NSNotifications, settings)
	gen := s.gen
	accountID := s.account.ID
	s.mu.Unlock()

	s.publish()
	s.remote("notification settings", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertNotificationSettings(ctx, accountID, settings)
	})
	return nil
}

// UpdateProfile applies a partial profile edit.
func (s *Store) UpdateProfile(patch models.ProfilePatch) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	patch.Apply(&s.account.Profile)
	s.account.UpdatedAt = s.now()
	s.persist(cache.NSUser, *s.account)
	gen := s.gen
	account := *s.account
	s.mu.Unlock()

	s.publish()
	s.remote("profile", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertAccount(ctx, account)
	})
	return nil
}

// SetSubscription switches the billing tier.
func (s *Store) SetSubscription(plan models.SubscriptionPlan) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	s.account.Subscription = plan
	s.account.UpdatedAt = s.now()
	s.persist(cache.NSUser, *s.account)
	gen := s.gen
	account := *s.account
	s.mu.Unlock()

	s.publish()
	s.remote("subscription", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertAccount(ctx, account)
	})
	return nil
}

// CompleteOnboarding applies the intro flow's profile answers and marks the
// flow as done. A nil patch only flips the flag.
func (s *Store) CompleteOnboarding(patch *models.ProfilePatch) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}
	var account *models.Account
	if patch != nil {
		patch.Apply(&s.account.Profile)
		s.account.UpdatedAt = s.now()
		s.persist(cache.NSUser, *s.account)
		copied := *s.account
		account = &copied
	}
	s.onboarded = true
	s.persist(cache.NSOnboarded, true)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	if account != nil {
		s.remote("profile", gen, func(ctx context.Context) error {
			return s.backend.Data().UpsertAccount(ctx, *account)
		})
	}
	return nil
}

// SetTheme stores the UI theme preference. Device-local; never synced.
func (s *Store) SetTheme(theme string) {
	s.mu.Lock()
	s.theme = theme
	s.persist(cache.NSTheme, theme)
	s.mu.Unlock()
	s.publish()
}
