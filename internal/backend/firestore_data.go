package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/meltforce/gymtrack/internal/models"
)

// firestoreData persists records as Firestore documents under
// users/{uid}/{collection}/{id}. The account itself is the users/{uid}
// document. Firestore returns documents in name order, so list calls sort
// client-side to keep the newest-first contract.
type firestoreData struct {
	fb *FirestoreBackend
}

func (d *firestoreData) docsBase() string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents", d.fb.docsURL, d.fb.projectID)
}

// accountID resolves the uid for calls that only carry a record id.
func (d *firestoreData) accountID() (string, error) {
	d.fb.mu.Lock()
	defer d.fb.mu.Unlock()
	if d.fb.session == nil {
		return "", fmt.Errorf("no active session")
	}
	return d.fb.session.AccountID, nil
}

func (d *firestoreData) do(ctx context.Context, method, docURL string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling document: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, docURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := d.fb.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.fb.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("calling firestore: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// firestoreDoc is the wire shape of a single document.
type firestoreDoc struct {
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
}

// listInto fetches every document in users/{uid}/{collection} and decodes
// them into out, which must be a pointer to a slice of records.
func listInto[T any](ctx context.Context, d *firestoreData, accountID, collection string, out *[]T) error {
	base := fmt.Sprintf("%s/users/%s/%s?pageSize=300", d.docsBase(), accountID, collection)
	pageToken := ""
	for {
		docURL := base
		if pageToken != "" {
			docURL += "&pageToken=" + pageToken
		}
		body, status, err := d.do(ctx, http.MethodGet, docURL, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("listing %s failed (status %d): %s", collection, status, body)
		}

		var page struct {
			Documents     []firestoreDoc `json:"documents"`
			NextPageToken string         `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decoding %s list: %w", collection, err)
		}

		for _, doc := range page.Documents {
			var record T
			if err := fieldsToRecord(doc.Fields, &record); err != nil {
				return fmt.Errorf("decoding %s document %s: %w", collection, doc.Name, err)
			}
			*out = append(*out, record)
		}

		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

func (d *firestoreData) upsertDoc(ctx context.Context, accountID, collection, id string, record any) error {
	fields, err := recordToFields(record)
	if err != nil {
		return err
	}
	docURL := fmt.Sprintf("%s/users/%s/%s/%s", d.docsBase(), accountID, collection, id)
	body, status, err := d.do(ctx, http.MethodPatch, docURL, map[string]any{"fields": fields})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("writing %s/%s failed (status %d): %s", collection, id, status, body)
	}
	return nil
}

func (d *firestoreData) deleteDoc(ctx context.Context, collection, id string) error {
	accountID, err := d.accountID()
	if err != nil {
		return err
	}
	docURL := fmt.Sprintf("%s/users/%s/%s/%s", d.docsBase(), accountID, collection, id)
	body, status, err := d.do(ctx, http.MethodDelete, docURL, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("deleting %s/%s failed (status %d): %s", collection, id, status, body)
	}
	return nil
}

func (d *firestoreData) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	docURL := fmt.Sprintf("%s/users/%s", d.docsBase(), accountID)
	body, status, err := d.do(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching account failed (status %d): %s", status, body)
	}

	var doc firestoreDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding account document: %w", err)
	}
	var account models.Account
	if err := fieldsToRecord(doc.Fields, &account); err != nil {
		return nil, fmt.Errorf("decoding account: %w", err)
	}
	return &account, nil
}

func (d *firestoreData) UpsertAccount(ctx context.Context, account models.Account) error {
	fields, err := recordToFields(account)
	if err != nil {
		return err
	}
	docURL := fmt.Sprintf("%s/users/%s", d.docsBase(), account.ID)
	body, status, err := d.do(ctx, http.MethodPatch, docURL, map[string]any{"fields": fields})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("writing account failed (status %d): %s", status, body)
	}
	return nil
}

func (d *firestoreData) ListWorkouts(ctx context.Context, accountID string) ([]models.Workout, error) {
	var out []models.Workout
	if err := listInto(ctx, d, accountID, "workouts", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (d *firestoreData) UpsertWorkout(ctx context.Context, w models.Workout) error {
	return d.upsertDoc(ctx, w.UserID, "workouts", w.ID, w)
}

func (d *firestoreData) DeleteWorkout(ctx context.Context, id string) error {
	return d.deleteDoc(ctx, "workouts", id)
}

func (d *firestoreData) ListCustomExercises(ctx context.Context, accountID string) ([]models.Exercise, error) {
	var out []models.Exercise
	if err := listInto(ctx, d, accountID, "custom_exercises", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *firestoreData) UpsertCustomExercise(ctx context.Context, accountID string, e models.Exercise) error {
	return d.upsertDoc(ctx, accountID, "custom_exercises", e.ID, e)
}

func (d *firestoreData) ListBodyWeights(ctx context.Context, accountID string) ([]models.BodyWeight, error) {
	var out []models.BodyWeight
	if err := listInto(ctx, d, accountID, "body_weights", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (d *firestoreData) UpsertBodyWeight(ctx context.Context, bw models.BodyWeight) error {
	return d.upsertDoc(ctx, bw.UserID, "body_weights", bw.ID, bw)
}

func (d *firestoreData) DeleteBodyWeight(ctx context.Context, id string) error {
	return d.deleteDoc(ctx, "body_weights", id)
}

func (d *firestoreData) ListMeasurements(ctx context.Context, accountID string) ([]models.BodyMeasurement, error) {
	var out []models.BodyMeasurement
	if err := listInto(ctx, d, accountID, "measurements", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (d *firestoreData) UpsertMeasurement(ctx context.Context, m models.BodyMeasurement) error {
	return d.upsertDoc(ctx, m.UserID, "measurements", m.ID, m)
}

func (d *firestoreData) DeleteMeasurement(ctx context.Context, id string) error {
	return d.deleteDoc(ctx, "measurements", id)
}

func (d *firestoreData) ListProgressPhotos(ctx context.Context, accountID string) ([]models.ProgressPhoto, error) {
	var out []models.ProgressPhoto
	if err := listInto(ctx, d, accountID, "progress_photos", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (d *firestoreData) UpsertProgressPhoto(ctx context.Context, p models.ProgressPhoto) error {
	return d.upsertDoc(ctx, p.UserID, "progress_photos", p.ID, p)
}

func (d *firestoreData) DeleteProgressPhoto(ctx context.Context, id string) error {
	return d.deleteDoc(ctx, "progress_photos", id)
}

func (d *firestoreData) ListPersonalRecords(ctx context.Context, accountID string) ([]models.PersonalRecord, error) {
	var out []models.PersonalRecord
	if err := listInto(ctx, d, accountID, "personal_records", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *firestoreData) UpsertPersonalRecord(ctx context.Context, pr models.PersonalRecord) error {
	return d.upsertDoc(ctx, pr.UserID, "personal_records", pr.ID, pr)
}

func (d *firestoreData) ListGoals(ctx context.Context, accountID string) ([]models.Goal, error) {
	var out []models.Goal
	if err := listInto(ctx, d, accountID, "goals", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (d *firestoreData) UpsertGoal(ctx context.Context, g models.Goal) error {
	return d.upsertDoc(ctx, g.UserID, "goals", g.ID, g)
}

func (d *firestoreData) DeleteGoal(ctx context.Context, id string) error {
	return d.deleteDoc(ctx, "goals", id)
}

func (d *firestoreData) ListTemplates(ctx context.Context, accountID string) ([]models.WorkoutTemplate, error) {
	var out []models.WorkoutTemplate
	if err := listInto(ctx, d, accountID, "workout_templates", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (d *firestoreData) UpsertTemplate(ctx context.Context, t models.WorkoutTemplate) error {
	return d.upsertDoc(ctx, t.UserID, "workout_templates", t.ID, t)
}

func (d *firestoreData) DeleteTemplate(ctx context.Context, id string) error {
	return d.deleteDoc(ctx, "workout_templates", id)
}

func (d *firestoreData) GetNotificationSettings(ctx context.Context, accountID string) (*models.NotificationSettings, error) {
	docURL := fmt.Sprintf("%s/users/%s/settings/notifications", d.docsBase(), accountID)
	body, status, err := d.do(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching notification settings failed (status %d): %s", status, body)
	}

	var doc firestoreDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding settings document: %w", err)
	}
	var settings models.NotificationSettings
	if err := fieldsToRecord(doc.Fields, &settings); err != nil {
		return nil, fmt.Errorf("decoding notification settings: %w", err)
	}
	return &settings, nil
}

func (d *firestoreData) UpsertNotificationSettings(ctx context.Context, accountID string, s models.NotificationSettings) error {
	return d.upsertDoc(ctx, accountID, "settings", "notifications", s)
}
