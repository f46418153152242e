package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bookora/bookora/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

type Business struct {
	ID           string
	Name         string
	Timezone     string
	DepositCents int
	Currency     string
	CreatedAt    time.Time
}

func (r *Repository) GetOrCreateBusiness(ctx context.Context, businessID string) (Business, error) {
	// Create a default profile if missing so a freshly registered tenant can be
	// configured incrementally.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO businesses (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, businessID)
	if err != nil {
		return Business{}, err
	}

	var b Business
	err = r.pool.QueryRow(ctx, `
		SELECT id::text, name, timezone, deposit_cents, currency, created_at
		FROM businesses
		WHERE id = $1
	`, businessID).Scan(&b.ID, &b.Name, &b.Timezone, &b.DepositCents, &b.Currency, &b.CreatedAt)
	return b, err
}

func (r *Repository) UpdateBusiness(ctx context.Context, b Business) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO businesses (id, name, timezone, deposit_cents, currency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			timezone = EXCLUDED.timezone,
			deposit_cents = EXCLUDED.deposit_cents,
			currency = EXCLUDED.currency,
			updated_at = now()
	`, b.ID, b.Name, b.Timezone, b.DepositCents, b.Currency)
	return err
}

type Service struct {
	ID           string
	BusinessID   string
	Name         string
	DurationMins int
	Price        string
	Description  string
	CreatedAt    time.Time
}

func (r *Repository) CreateService(ctx context.Context, svc Service) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO business_services (id, business_id, name, duration_minutes, price, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, svc.BusinessID, svc.Name, svc.DurationMins, svc.Price, svc.Description)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListServices(ctx context.Context, businessID string, limit int) ([]Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, name, duration_minutes, price::text, description, created_at
		FROM business_services
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMins, &s.Price, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetService(ctx context.Context, businessID, serviceID string) (Service, error) {
	var s Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, business_id::text, name, duration_minutes, price::text, description, created_at
		FROM business_services
		WHERE business_id = $1 AND id = $2
	`, businessID, serviceID).Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMins, &s.Price, &s.Description, &s.CreatedAt)
	return s, err
}

type Staff struct {
	ID         string
	BusinessID string
	Name       string
	IsActive   bool
}

func (r *Repository) CreateStaff(ctx context.Context, businessID, name string, isActive bool) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO staff (business_id, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, businessID, name, isActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListStaff(ctx context.Context, businessID string, activeOnly bool) ([]Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, name, is_active
		FROM staff
		WHERE business_id = $1 AND (NOT $2 OR is_active)
		ORDER BY created_at ASC
	`, businessID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) SetStaffActive(ctx context.Context, businessID, staffID string, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff
		SET is_active = $3
		WHERE business_id = $1 AND id = $2
	`, businessID, staffID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AvailabilityWindow is one recurring weekly working interval. A staff member
// may have several per weekday (e.g. split shifts); they are stored as
// independent rows, never merged.
type AvailabilityWindow struct {
	ID          string
	StaffID     string
	Weekday     int
	StartMinute int
	EndMinute   int
}

func (r *Repository) CreateWindow(ctx context.Context, businessID string, w AvailabilityWindow) (string, error) {
	if err := r.requireStaff(ctx, businessID, w.StaffID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff_availability_windows (id, staff_id, weekday, start_minute, end_minute)
		VALUES ($1, $2, $3, $4, $5)
	`, id, w.StaffID, w.Weekday, w.StartMinute, w.EndMinute)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListWindows(ctx context.Context, businessID, staffID string) ([]AvailabilityWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.id::text, w.staff_id::text, w.weekday, w.start_minute, w.end_minute
		FROM staff_availability_windows w
		JOIN staff s ON s.id = w.staff_id
		WHERE s.business_id = $1 AND w.staff_id = $2
		ORDER BY w.weekday, w.start_minute
	`, businessID, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

// ListWindowsForWeekday returns every active staff member's windows for one
// weekday, optionally narrowed to a single staff id. This is the generator's
// window snapshot.
func (r *Repository) ListWindowsForWeekday(ctx context.Context, businessID string, staffID string, weekday int) ([]AvailabilityWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.id::text, w.staff_id::text, w.weekday, w.start_minute, w.end_minute
		FROM staff_availability_windows w
		JOIN staff s ON s.id = w.staff_id
		WHERE s.business_id = $1
			AND s.is_active
			AND w.weekday = $2
			AND ($3 = '' OR w.staff_id::text = $3)
		ORDER BY w.staff_id, w.start_minute
	`, businessID, weekday, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

func (r *Repository) DeleteWindow(ctx context.Context, businessID, windowID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM staff_availability_windows w
		USING staff s
		WHERE w.staff_id = s.id
		  AND s.business_id = $1
		  AND w.id = $2
	`, businessID, windowID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanWindows(rows pgx.Rows) ([]AvailabilityWindow, error) {
	var out []AvailabilityWindow
	for rows.Next() {
		var w AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.StaffID, &w.Weekday, &w.StartMinute, &w.EndMinute); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

type Blackout struct {
	ID        string
	StaffID   string
	StartTime time.Time
	EndTime   time.Time
	Reason    string
	CreatedAt time.Time
}

func (r *Repository) CreateBlackout(ctx context.Context, businessID string, b Blackout) (string, error) {
	if err := r.requireStaff(ctx, businessID, b.StaffID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff_blackouts (id, staff_id, start_time, end_time, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, id, b.StaffID, b.StartTime, b.EndTime, b.Reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListBlackouts returns blackouts for the business overlapping [from, to),
// optionally narrowed to one staff member.
func (r *Repository) ListBlackouts(ctx context.Context, businessID, staffID string, from, to time.Time) ([]Blackout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id::text, b.staff_id::text, b.start_time, b.end_time, b.reason, b.created_at
		FROM staff_blackouts b
		JOIN staff s ON s.id = b.staff_id
		WHERE s.business_id = $1
			AND ($2 = '' OR b.staff_id::text = $2)
			AND b.end_time > $3
			AND b.start_time < $4
		ORDER BY b.start_time ASC
	`, businessID, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Blackout
	for rows.Next() {
		var b Blackout
		if err := rows.Scan(&b.ID, &b.StaffID, &b.StartTime, &b.EndTime, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteBlackout(ctx context.Context, businessID, blackoutID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM staff_blackouts b
		USING staff s
		WHERE b.staff_id = s.id
		  AND s.business_id = $1
		  AND b.id = $2
	`, businessID, blackoutID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type Review struct {
	ID           string
	BusinessID   string
	CustomerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

func (r *Repository) CreateReview(ctx context.Context, rev Review) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reviews (id, business_id, customer_name, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
	`, id, rev.BusinessID, rev.CustomerName, rev.Rating, rev.Comment)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListReviews(ctx context.Context, businessID string, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, business_id::text, customer_name, rating, comment, created_at
		FROM reviews
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.BusinessID, &rev.CustomerName, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteReview(ctx context.Context, businessID, reviewID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM reviews
		WHERE business_id = $1 AND id = $2
	`, businessID, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) requireStaff(ctx context.Context, businessID, staffID string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM staff WHERE id = $1 AND business_id = $2
		)
	`, staffID, businessID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return nil
}
