package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodbank/internal/donor/models"
	"bloodbank/internal/platform/database"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// SQLStore persists donors in PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewPostgres constructs a PostgreSQL-backed donor store.
func NewPostgres(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: database.Postgres}
}

// NewSQLite constructs a SQLite-backed donor store.
func NewSQLite(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: database.SQLite}
}

const donorColumns = `id, first_name, last_name, email, phone, birth_date, blood_type, weight,
	last_donation_date, is_eligible, medical_notes, created_by, created_at, updated_at`

// Create inserts a donor, rejecting a duplicate email.
func (s *SQLStore) Create(ctx context.Context, d *models.Donor) error {
	if d == nil {
		return fmt.Errorf("donor is required")
	}
	query := s.dialect.Rebind(`
		INSERT INTO donors (` + donorColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(d.ID),
		d.FirstName,
		d.LastName,
		d.Email,
		nullString(d.Phone),
		d.BirthDate,
		string(d.BloodType),
		d.Weight,
		nullTime(d.LastDonationDate),
		d.IsEligible,
		nullString(d.MedicalNotes),
		uuid.UUID(d.CreatedBy),
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("donor email must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create donor: %w", err)
	}
	return nil
}

// FindByID retrieves a donor by its UUID.
func (s *SQLStore) FindByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error) {
	query := s.dialect.Rebind(`SELECT ` + donorColumns + ` FROM donors WHERE id = ?`)
	d, err := scanDonor(s.db.QueryRowContext(ctx, query, uuid.UUID(donorID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find donor by id: %w", err)
	}
	return d, nil
}

// Update writes every mutable column of an existing donor.
func (s *SQLStore) Update(ctx context.Context, d *models.Donor) error {
	if d == nil {
		return fmt.Errorf("donor is required")
	}
	query := s.dialect.Rebind(`
		UPDATE donors
		SET first_name = ?, last_name = ?, email = ?, phone = ?, birth_date = ?,
			blood_type = ?, weight = ?, last_donation_date = ?, is_eligible = ?,
			medical_notes = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := s.db.ExecContext(ctx, query,
		d.FirstName,
		d.LastName,
		d.Email,
		nullString(d.Phone),
		d.BirthDate,
		string(d.BloodType),
		d.Weight,
		nullTime(d.LastDonationDate),
		d.IsEligible,
		nullString(d.MedicalNotes),
		d.UpdatedAt,
		uuid.UUID(d.ID),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("donor email must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update donor: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donor rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes a donor.
func (s *SQLStore) Delete(ctx context.Context, donorID id.DonorID) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM donors WHERE id = ?`), uuid.UUID(donorID))
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete donor rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// List returns one page of donors matching the filter, oldest first.
func (s *SQLStore) List(ctx context.Context, filter models.ListFilter, page models.Page) ([]*models.Donor, error) {
	where, args := whereClause(filter)
	args = append(args, page.PerPage, page.Offset())
	query := s.dialect.Rebind(`SELECT ` + donorColumns + ` FROM donors` + where +
		` ORDER BY created_at, id LIMIT ? OFFSET ?`)
	return s.query(ctx, "list donors", query, args...)
}

// Count returns the number of donors matching the filter.
func (s *SQLStore) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	where, args := whereClause(filter)
	var count int
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT COUNT(*) FROM donors`+where), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count donors: %w", err)
	}
	return count, nil
}

// ListAll returns every donor, oldest first.
func (s *SQLStore) ListAll(ctx context.Context) ([]*models.Donor, error) {
	return s.query(ctx, "list all donors", `SELECT `+donorColumns+` FROM donors ORDER BY created_at, id`)
}

func (s *SQLStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Donor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	donors := make([]*models.Donor, 0)
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return donors, nil
}

func whereClause(filter models.ListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.CreatedBy != nil {
		conds = append(conds, "created_by = ?")
		args = append(args, uuid.UUID(*filter.CreatedBy))
	}
	if filter.BloodType != nil {
		conds = append(conds, "blood_type = ?")
		args = append(args, string(*filter.BloodType))
	}
	if filter.IsEligible != nil {
		conds = append(conds, "is_eligible = ?")
		args = append(args, *filter.IsEligible)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type donorRow interface {
	Scan(dest ...any) error
}

func scanDonor(row donorRow) (*models.Donor, error) {
	var (
		d            models.Donor
		donorID      uuid.UUID
		createdBy    uuid.UUID
		bloodType    string
		phone        sql.NullString
		notes        sql.NullString
		lastDonation sql.NullTime
	)
	if err := row.Scan(
		&donorID,
		&d.FirstName,
		&d.LastName,
		&d.Email,
		&phone,
		&d.BirthDate,
		&bloodType,
		&d.Weight,
		&lastDonation,
		&d.IsEligible,
		&notes,
		&createdBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.ID = id.DonorID(donorID)
	d.CreatedBy = id.UserID(createdBy)
	d.BloodType = models.BloodType(bloodType)
	d.BirthDate = calendarDate(d.BirthDate)
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	if phone.Valid {
		d.Phone = &phone.String
	}
	if notes.Valid {
		d.MedicalNotes = &notes.String
	}
	if lastDonation.Valid {
		t := calendarDate(lastDonation.Time)
		d.LastDonationDate = &t
	}
	return &d, nil
}

// calendarDate drops any zone offset a driver attached to a DATE column.
func calendarDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
