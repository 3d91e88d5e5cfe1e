package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/autoaudit/estimator/vehicle"
)

// PostgresReportStore implements ReportStore backed by PostgreSQL
type PostgresReportStore struct {
	db *sql.DB
}

// NewPostgresReportStore creates a new PostgreSQL-backed ReportStore
func NewPostgresReportStore(db *sql.DB) *PostgresReportStore {
	return &PostgresReportStore{db: db}
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Create inserts a new report
func (s *PostgresReportStore) Create(ctx context.Context, r *Report) error {
	if r.ID == "" {
		r.ID = NewReportID()
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("invalid report ID %q: %w", r.ID, err)
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	var askingPrice sql.NullFloat64
	if r.Facts.AskingPrice != nil {
		askingPrice = sql.NullFloat64{Float64: *r.Facts.AskingPrice, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, car_year, mileage, fuel, transmission, timing_type, asking_price, make,
			preview_payload, full_payload, is_paid, checkout_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.ID, r.Facts.Year, r.Facts.Mileage, string(r.Facts.Fuel), string(r.Facts.Transmission),
		string(r.Facts.TimingType), askingPrice, nullString(r.Facts.Make),
		[]byte(r.Preview), []byte(r.Full), r.IsPaid, nullString(r.CheckoutRef), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

const selectReport = `
	SELECT id, car_year, mileage, fuel, transmission, timing_type, asking_price, make,
		preview_payload, full_payload, is_paid, checkout_ref, created_at, updated_at
	FROM reports
`

// Get retrieves a report by ID
func (s *PostgresReportStore) Get(ctx context.Context, id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	r, err := scanReport(s.db.QueryRowContext(ctx, selectReport+`WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r, nil
}

// GetByCheckoutRef finds the report a payment session was opened for.
// If a ref was reused the most recently updated report wins.
func (s *PostgresReportStore) GetByCheckoutRef(ctx context.Context, ref string) (*Report, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty checkout reference", ErrNotFound)
	}

	r, err := scanReport(s.db.QueryRowContext(ctx, selectReport+`
		WHERE checkout_ref = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: checkout %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report by checkout reference: %w", err)
	}
	return r, nil
}

func scanReport(row *sql.Row) (*Report, error) {
	var (
		r           Report
		fuel        string
		trans       string
		timing      string
		askingPrice sql.NullFloat64
		carMake     sql.NullString
		checkoutRef sql.NullString
		preview     []byte
		full        []byte
	)
	err := row.Scan(
		&r.ID,
		&r.Facts.Year,
		&r.Facts.Mileage,
		&fuel,
		&trans,
		&timing,
		&askingPrice,
		&carMake,
		&preview,
		&full,
		&r.IsPaid,
		&checkoutRef,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Facts.Fuel = vehicle.Fuel(fuel)
	r.Facts.Transmission = vehicle.Transmission(trans)
	r.Facts.TimingType = vehicle.TimingType(timing)
	if askingPrice.Valid {
		p := askingPrice.Float64
		r.Facts.AskingPrice = &p
	}
	r.Facts.Make = carMake.String
	r.CheckoutRef = checkoutRef.String
	r.Preview = preview
	r.Full = full

	return &r, nil
}

// MarkPaid sets is_paid and returns the updated report
func (s *PostgresReportStore) MarkPaid(ctx context.Context, id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	// updated_at only moves on the first unlock
	result, err := s.db.ExecContext(ctx, `
		UPDATE reports
		SET is_paid = true,
			updated_at = CASE WHEN is_paid THEN updated_at ELSE $1 END
		WHERE id = $2
	`, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark report paid: %w", err)
	}
	if err := expectRow(result, id); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// SetCheckoutRef stores the payment reference
func (s *PostgresReportStore) SetCheckoutRef(ctx context.Context, id, ref string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reports
		SET checkout_ref = $1, updated_at = $2
		WHERE id = $3
	`, nullString(ref), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set checkout reference: %w", err)
	}
	return expectRow(result, id)
}

func expectRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
