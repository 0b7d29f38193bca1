package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meltforce/gymtrack/internal/models"
)

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// supabaseData maps each record category onto its own table. Scalar fields
// get snake_case columns; nested slices (workout exercises, template
// exercises, reminder days, instructions) travel as JSONB so their camelCase
// JSON shape round-trips unchanged.
type supabaseData struct {
	pool *pgxpool.Pool
}

// marshalJSONB encodes a nested value for a JSONB column.
func marshalJSONB(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding jsonb: %w", err)
	}
	return data, nil
}

func unmarshalJSONB(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding jsonb: %w", err)
	}
	return nil
}

func (d *supabaseData) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	var a models.Account
	err := d.pool.QueryRow(ctx,
		`SELECT id, email, display_name, photo_url, created_at, updated_at,
		 name, age, height_cm, weight_kg, goal, experience_level, units, subscription
		 FROM profiles WHERE id = $1`, accountID).
		Scan(&a.ID, &a.Email, &a.DisplayName, &a.PhotoURL, &a.CreatedAt, &a.UpdatedAt,
			&a.Profile.Name, &a.Profile.Age, &a.Profile.HeightCm, &a.Profile.WeightKg,
			&a.Profile.Goal, &a.Profile.ExperienceLevel, &a.Profile.Units, &a.Subscription)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &a, nil
}

func (d *supabaseData) UpsertAccount(ctx context.Context, a models.Account) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO profiles (id, email, display_name, photo_url, created_at, updated_at,
		 name, age, height_cm, weight_kg, goal, experience_level, units, subscription)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 ON CONFLICT (id) DO UPDATE SET
		 email = EXCLUDED.email, display_name = EXCLUDED.display_name,
		 photo_url = EXCLUDED.photo_url, updated_at = EXCLUDED.updated_at,
		 name = EXCLUDED.name, age = EXCLUDED.age, height_cm = EXCLUDED.height_cm,
		 weight_kg = EXCLUDED.weight_kg, goal = EXCLUDED.goal,
		 experience_level = EXCLUDED.experience_level, units = EXCLUDED.units,
		 subscription = EXCLUDED.subscription`,
		a.ID, a.Email, a.DisplayName, a.PhotoURL, a.CreatedAt, a.UpdatedAt,
		a.Profile.Name, a.Profile.Age, a.Profile.HeightCm, a.Profile.WeightKg,
		a.Profile.Goal, a.Profile.ExperienceLevel, a.Profile.Units, a.Subscription)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// workoutRow mirrors the workouts table: one field per scalar column plus the
// JSONB exercises payload. Keeping the conversion separate from the queries
// pins the column mapping independently of a live database.
type workoutRow struct {
	ID               string
	UserID           string
	Name             string
	Date             string
	StartTime        time.Time
	EndTime          *time.Time
	DurationSeconds  *int
	Exercises        []byte
	Notes            string
	CaloriesEstimate *int
	IsCompleted      bool
	CreatedAt        time.Time
}

func workoutToRow(w models.Workout) (workoutRow, error) {
	exercises, err := marshalJSONB(w.Exercises)
	if err != nil {
		return workoutRow{}, err
	}
	return workoutRow{
		ID:               w.ID,
		UserID:           w.UserID,
		Name:             w.Name,
		Date:             w.Date,
		StartTime:        w.StartTime,
		EndTime:          w.EndTime,
		DurationSeconds:  w.DurationSeconds,
		Exercises:        exercises,
		Notes:            w.Notes,
		CaloriesEstimate: w.CaloriesEstimate,
		IsCompleted:      w.IsCompleted,
		CreatedAt:        w.CreatedAt,
	}, nil
}

func (r workoutRow) workout() (models.Workout, error) {
	w := models.Workout{
		ID:               r.ID,
		UserID:           r.UserID,
		Name:             r.Name,
		Date:             r.Date,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		DurationSeconds:  r.DurationSeconds,
		Notes:            r.Notes,
		CaloriesEstimate: r.CaloriesEstimate,
		IsCompleted:      r.IsCompleted,
		CreatedAt:        r.CreatedAt,
	}
	if err := unmarshalJSONB(r.Exercises, &w.Exercises); err != nil {
		return models.Workout{}, fmt.Errorf("workout %s exercises: %w", r.ID, err)
	}
	return w, nil
}

func (d *supabaseData) ListWorkouts(ctx context.Context, accountID string) ([]models.Workout, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, name, date, start_time, end_time, duration_seconds,
		 exercises, notes, calories_estimate, is_completed, created_at
		 FROM workouts WHERE user_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	var out []models.Workout
	for rows.Next() {
		var r workoutRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Date, &r.StartTime, &r.EndTime,
			&r.DurationSeconds, &r.Exercises, &r.Notes, &r.CaloriesEstimate,
			&r.IsCompleted, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w, err := r.workout()
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (d *supabaseData) UpsertWorkout(ctx context.Context, w models.Workout) error {
	r, err := workoutToRow(w)
	if err != nil {
		return err
	}
	_, err = d.pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, date, start_time, end_time, duration_seconds,
		 exercises, notes, calories_estimate, is_completed, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (id) DO UPDATE SET
		 name = EXCLUDED.name, date = EXCLUDED.date, start_time = EXCLUDED.start_time,
		 end_time = EXCLUDED.end_time, duration_seconds = EXCLUDED.duration_seconds,
		 exercises = EXCLUDED.exercises, notes = EXCLUDED.notes,
		 calories_estimate = EXCLUDED.calories_estimate, is_completed = EXCLUDED.is_completed`,
		r.ID, r.UserID, r.Name, r.Date, r.StartTime, r.EndTime, r.DurationSeconds,
		r.Exercises, r.Notes, r.CaloriesEstimate, r.IsCompleted, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting workout: %w", err)
	}
	return nil
}

func (d *supabaseData) DeleteWorkout(ctx context.Context, id string) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}

func (d *supabaseData) ListCustomExercises(ctx context.Context, accountID string) ([]models.Exercise, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, muscle_group, category, description, instructions
		 FROM custom_exercises WHERE user_id = $1`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing custom exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		e := models.Exercise{IsCustom: true}
		var instructions []byte
		if err := rows.Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Category, &e.Description, &instructions); err != nil {
			return nil, fmt.Errorf("scanning custom exercise: %w", err)
		}
		if err := unmarshalJSONB(instructions, &e.Instructions); err != nil {
			return nil, fmt.Errorf("exercise %s instructions: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *supabaseData) UpsertCustomExercise(ctx context.Context, accountID string, e models.Exercise) error {
	instructions, err := marshalJSONB(e.Instructions)
	if err != nil {
		return err
	}
	_, err = d.pool.Exec(ctx,
		`INSERT INTO custom_exercises (id, user_id, name, muscle_group, category, description, instructions)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET
		 name = EXCLUDED.name, muscle_group = EXCLUDED.muscle_group,
		 category = EXCLUDED.category, description = EXCLUDED.description,
		 instructions = EXCLUDED.instructions`,
		e.ID, accountID, e.Name, e.MuscleGroup, e.Category, e.Description, instructions)
	if err != nil {
		return fmt.Errorf("upserting custom exercise: %w", err)
	}
	return nil
}

func (d *supabaseData) ListBodyWeights(ctx context.Context, accountID string) ([]models.BodyWeight, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, weight_kg, date, notes
		 FROM body_weights WHERE user_id = $1 ORDER BY date DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing body weights: %w", err)
	}
	defer rows.Close()

	var out []models.BodyWeight
	for rows.Next() {
		var bw models.BodyWeight
		if err := rows.Scan(&bw.ID, &bw.UserID, &bw.WeightKg, &bw.Date, &bw.Notes); err != nil {
			return nil, fmt.Errorf("scanning body weight: %w", err)
		}
		out = append(out, bw)
	}
	return out, rows.Err()
}

func (d *supabaseData) UpsertBodyWeight(ctx context.Context, bw models.BodyWeight) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO body_weights (id, user_id, weight_kg, date, notes)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO UPDATE SET
		 weight_kg = EXCLUDED.weight_kg, date = EXCLUDED.date, notes = EXCLUDED.notes`,
		bw.ID, bw.UserID, bw.WeightKg, bw.Date, bw.Notes)
	if err != nil {
		return fmt.Errorf("upserting body weight: %w", err)
	}
	return nil
}

func (d *supabaseData) DeleteBodyWeight(ctx context.Context, id string) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM body_weights WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting body weight: %w", err)
	}
	return nil
}

func (d *supabaseData) ListMeasurements(ctx context.Context, accountID string) ([]models.BodyMeasurement, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, date, chest_cm, arms_cm, waist_cm, legs_cm, notes
		 FROM measurements WHERE user_id = $1 ORDER BY date DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing measurements: %w", err)
	}
	defer rows.Close()

	var out []models.BodyMeasurement
	for rows.Next() {
		var m models.BodyMeasurement
		if err := rows.Scan(&m.ID, &m.UserID, &m.Date, &m.Chest, &m.Arms, &m.Waist, &m.Legs, &m.Notes); err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *supabaseData) UpsertMeasurement(ctx context.Context, m models.BodyMeasurement) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO measurements (id, user_id, date, chest_cm, arms_cm, waist_cm, legs_cm, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		 date = EXCLUDED.date, chest_cm = EXCLUDED.chest_cm, arms_cm = EXCLUDED.arms_cm,
		 waist_cm = EXCLUDED.waist_cm, legs_cm = EXCLUDED.legs_cm, notes = EXCLUDED.notes`,
		m.ID, m.UserID, m.Date, m.Chest, m.Arms, m.Waist, m.Legs, m.Notes)
	if err != nil {
		return fmt.Errorf("upserting measurement: %w", err)
	}
	return nil
}

func (d *supabaseData) DeleteMeasurement(ctx context.Context, id string) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM measurements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting measurement: %w", err)
	}
	return nil
}

func (d *supabaseData) ListProgressPhotos(ctx context.Context, accountID string) ([]models.ProgressPhoto, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, uri, date, category, notes
		 FROM progress_photos WHERE user_id = $1 ORDER BY date DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing progress photos: %w", err)
	}
	defer rows.Close()

	var out []models.ProgressPhoto
	for rows.Next() {
		var p models.ProgressPhoto
		if err := rows.Scan(&p.ID, &p.UserID, &p.URI, &p.Date, &p.Category, &p.Notes); err != nil {
			return nil, fmt.Errorf("scanning progress photo: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *supabaseData) UpsertProgressPhoto(ctx context.Context, p models.ProgressPhoto) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO progress_photos (id, user_id, uri, date, category, notes)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET
		 uri = EXCLUDED.uri, date = EXCLUDED.date, category = EXCLUDED.category,
		 notes = EXCLUDED.notes`,
		p.ID, p.UserID, p.URI, p.Date, p.Category, p.Notes)
	if err != nil {
		return fmt.Errorf("upserting progress photo: %w", err)
	}
	return nil
}

func (d *supabaseData) DeleteProgressPhoto(ctx context.Context, id string) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM progress_photos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting progress photo: %w", err)
	}
	return nil
}

func (d *supabaseData) ListPersonalRecords(ctx context.Context, accountID string) ([]models.PersonalRecord, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, exercise_id, exercise_name, weight_kg, reps, date, one_rep_max
		 FROM personal_records WHERE user_id = $1`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing personal records: %w", err)
	}
	defer rows.Close()

	var out []models.PersonalRecord
	for rows.Next() {
		var pr models.PersonalRecord
		if err := rows.Scan(&pr.ID, &pr.UserID, &pr.ExerciseID, &pr.ExerciseName,
			&pr.WeightKg, &pr.Reps, &pr.Date, &pr.OneRepMax); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// UpsertPersonalRecord keys on (user_id, exercise_id): one record per
// exercise, replaced when beaten.
func (d *supabaseData) UpsertPersonalRecord(ctx context.Context, pr models.PersonalRecord) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO personal_records (id, user_id, exercise_id, exercise_name, weight_kg, reps, date, one_rep_max)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (user_id, exercise_id) DO UPDATE SET
		 id = EXCLUDED.id, exercise_name = EXCLUDED.exercise_name,
		 weight_kg = EXCLUDED.weight_kg, reps = EXCLUDED.reps,
		 date = EXCLUDED.date, one_rep_max = EXCLUDED.one_rep_max`,
		pr.ID, pr.UserID, pr.ExerciseID, pr.ExerciseName, pr.WeightKg, pr.Reps, pr.Date, pr.OneRepMax)
	if err != nil {
		return fmt.Errorf("upserting personal record: %w", err)
	}
	return nil
}

func (d *supabaseData) ListGoals(ctx context.Context, accountID string) ([]models.Goal, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, type, title, description, target_value, current_value,
		 unit, deadline, is_completed, created_at
		 FROM goals WHERE user_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var out []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Type, &g.Title, &g.Description,
			&g.TargetValue, &g.CurrentValue, &g.Unit, &g.Deadline, &g.IsCompleted, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (d *supabaseData) UpsertGoal(ctx context.Context, g models.Goal) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO goals (id, user_id, type, title, description, target_value, current_value,
		 unit, deadline, is_completed, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (id) DO UPDATE SET
		 type = EXCLUDED.type, title = EXCLUDED.title, description = EXCLUDED.description,
		 target_value = EXCLUDED.target_value, current_value = EXCLUDED.current_value,
		 unit = EXCLUDED.unit, deadline = EXCLUDED.deadline, is_completed = EXCLUDED.is_completed`,
		g.ID, g.UserID, g.Type, g.Title, g.Description, g.TargetValue, g.CurrentValue,
		g.Unit, g.Deadline, g.IsCompleted, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting goal: %w", err)
	}
	return nil
}

func (d *supabaseData) DeleteGoal(ctx context.Context, id string) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	return nil
}

func (d *supabaseData) ListTemplates(ctx context.Context, accountID string) ([]models.WorkoutTemplate, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, name, exercises, created_at, last_used, times_used
		 FROM workout_templates WHERE user_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var out []models.WorkoutTemplate
	for rows.Next() {
		var t models.WorkoutTemplate
		var exercises []byte
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &exercises, &t.CreatedAt, &t.LastUsed, &t.TimesUsed); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		if err := unmarshalJSONB(exercises, &t.Exercises); err != nil {
			return nil, fmt.Errorf("template %s exercises: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (d *supabaseData) UpsertTemplate(ctx context.Context, t models.WorkoutTemplate) error {
	exercises, err := marshalJSONB(t.Exercises)
	if err != nil {
		return err
	}
	_, err = d.pool.Exec(ctx,
		`INSERT INTO workout_templates (id, user_id, name, exercises, created_at, last_used, times_used)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET
		 name = EXCLUDED.name, exercises = EXCLUDED.exercises,
		 last_used = EXCLUDED.last_used, times_used = EXCLUDED.times_used`,
		t.ID, t.UserID, t.Name, exercises, t.CreatedAt, t.LastUsed, t.TimesUsed)
	if err != nil {
		return fmt.Errorf("upserting template: %w", err)
	}
	return nil
}

func (d *supabaseData) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM workout_templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return nil
}

func (d *supabaseData) GetNotificationSettings(ctx context.Context, accountID string) (*models.NotificationSettings, error) {
	var s models.NotificationSettings
	var days []byte
	err := d.pool.QueryRow(ctx,
		`SELECT workout_reminders, reminder_time, reminder_days, goal_progress_alerts, personal_record_alerts
		 FROM notification_settings WHERE user_id = $1`, accountID).
		Scan(&s.WorkoutReminders, &s.ReminderTime, &days, &s.GoalProgressAlerts, &s.PersonalRecordAlerts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching notification settings: %w", err)
	}
	if err := unmarshalJSONB(days, &s.ReminderDays); err != nil {
		return nil, fmt.Errorf("reminder days: %w", err)
	}
	return &s, nil
}

func (d *supabaseData) UpsertNotificationSettings(ctx context.Context, accountID string, s models.NotificationSettings) error {
	days, err := marshalJSONB(s.ReminderDays)
	if err != nil {
		return err
	}
	_, err = d.pool.Exec(ctx,
		`INSERT INTO notification_settings (user_id, workout_reminders, reminder_time, reminder_days,
		 goal_progress_alerts, personal_record_alerts)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id) DO UPDATE SET
		 workout_reminders = EXCLUDED.workout_reminders, reminder_time = EXCLUDED.reminder_time,
		 reminder_days = EXCLUDED.reminder_days, goal_progress_alerts = EXCLUDED.goal_progress_alerts,
		 personal_record_alerts = EXCLUDED.personal_record_alerts`,
		accountID, s.WorkoutReminders, s.ReminderTime, days, s.GoalProgressAlerts, s.PersonalRecordAlerts)
	if err != nil {
		return fmt.Errorf("upserting notification settings: %w", err)
	}
	return nil
}
