package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meltforce/gymtrack/internal/cache"
	"github.com/meltforce/gymtrack/internal/models"
)

// LogBodyWeight prepends a weight observation and keeps the profile's
// denormalized current weight in step with it.
func (s *Store) LogBodyWeight(weightKg float64, notes string) (*models.BodyWeight, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	bw := models.BodyWeight{
		ID:       uuid.NewString(),
		UserID:   s.account.ID,
		WeightKg: weightKg,
		Date:     s.now(),
		Notes:    notes,
	}
	s.bodyWeights = append([]models.BodyWeight{bw}, s.bodyWeights...)
	s.account.Profile.WeightKg = &bw.WeightKg
	s.account.UpdatedAt = s.now()

	s.persist(cache.NSBodyWeights, s.bodyWeights)
	s.persist(cache.NSUser, *s.account)
	gen := s.gen
	account := *s.account
	s.mu.Unlock()

	s.publish()
	s.remote("body weight", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertBodyWeight(ctx, bw)
	})
	s.remote("profile weight", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertAccount(ctx, account)
	})
	return &bw, nil
}

// DeleteBodyWeight removes a weight observation. The profile's current
// weight is left as-is; the next log overwrites it.
func (s *Store) DeleteBodyWeight(id string) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	kept := s.bodyWeights[:0]
	found := false
	for _, bw := range s.bodyWeights {
		if bw.ID == id {
			found = true
			continue
		}
		kept = append(kept, bw)
	}
	s.bodyWeights = kept
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("body weight %s: %w", id, ErrNotFound)
	}
	s.persist(cache.NSBodyWeights, s.bodyWeights)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("delete body weight", gen, func(ctx context.Context) error {
		return s.backend.Data().DeleteBodyWeight(ctx, id)
	})
	return nil
}

// AddMeasurement prepends a tape measurement entry.
func (s *Store) AddMeasurement(m models.BodyMeasurement) (*models.BodyMeasurement, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	m.ID = uuid.NewString()
	m.UserID = s.account.ID
	if m.Date.IsZero() {
		m.Date = s.now()
	}
	s.measurements = append([]models.BodyMeasurement{m}, s.measurements...)
	s.persist(cache.NSMeasurements, s.measurements)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("measurement", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertMeasurement(ctx, m)
	})
	return &m, nil
}

// DeleteMeasurement removes a tape measurement entry.
func (s *Store) DeleteMeasurement(id string) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}

	kept := s.measurements[:0]
	found := false
	for _, m := range s.measurements {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	s.measurements = kept
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("measurement %s: %w", id, ErrNotFound)
	}
	s.persist(cache.NSMeasurements, s.measurements)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("delete measurement", gen, func(ctx context.Context) error {
		return s.backend.Data().DeleteMeasurement(ctx, id)
	})
	return nil
}

// AddProgressPhoto uploads the photo bytes first — an upload failure
// surfaces to the caller and records nothing — then prepends the record
// referencing the returned URI. The record's id doubles as the blob id.
func (s *Store) AddProgressPhoto(ctx context.Context, data []byte, category models.PhotoAngle, notes string) (*models.ProgressPhoto, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}
	accountID := s.account.ID
	s.mu.Unlock()

	id := uuid.NewString()
	uri, err := s.backend.Blobs().Upload(ctx, accountID, data, id)
	if err != nil {
		return nil, fmt.Errorf("uploading photo: %w", err)
	}

	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, ErrNotSignedIn
	}
	p := models.ProgressPhoto{
		ID:       id,
		UserID:   accountID,
		URI:      uri,
		Date:     s.now(),
		Category: category,
		Notes:    notes,
	}
	s.photos = append([]models.ProgressPhoto{p}, s.photos...)
	s.persist(cache.NSPhotos, s.photos)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("progress photo", gen, func(ctx context.Context) error {
		return s.backend.Data().UpsertProgressPhoto(ctx, p)
	})
	return &p, nil
}

// DeleteProgressPhoto removes the record and deletes the blob best-effort.
func (s *Store) DeleteProgressPhoto(id string) error {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}
	accountID := s.account.ID

	kept := s.photos[:0]
	found := false
	for _, p := range s.photos {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	s.photos = kept
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("progress photo %s: %w", id, ErrNotFound)
	}
	s.persist(cache.NSPhotos, s.photos)
	gen := s.gen
	s.mu.Unlock()

	s.publish()
	s.remote("delete progress photo", gen, func(ctx context.Context) error {
		return s.backend.Data().DeleteProgressPhoto(ctx, id)
	})
	s.remote("delete photo blob", gen, func(ctx context.Context) error {
		return s.backend.Blobs().Delete(ctx, accountID, id)
	})
	return nil
}
