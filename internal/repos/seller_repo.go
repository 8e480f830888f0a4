package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"stockbook/internal/domain"
	"stockbook/internal/validate"
)

type SellerRepo struct {
	db   sqlx.ExtContext
	now  func() time.Time
	cost int
}

func NewSellerRepo(db sqlx.ExtContext) *SellerRepo {
	return &SellerRepo{db: db, now: time.Now, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func (r *SellerRepo) WithCost(cost int) *SellerRepo {
	return &SellerRepo{db: r.db, now: r.now, cost: cost}
}

type sellerRow struct {
	ID             int64          `db:"id"`
	Name           string         `db:"name"`
	Passcode       string         `db:"passcode"`
	LastUpdateDate sql.NullString `db:"last_update_date"`
}

func (row sellerRow) toDomain() *domain.Seller {
	s := &domain.Seller{ID: row.ID, Name: row.Name, Passcode: row.Passcode}
	if row.LastUpdateDate.Valid {
		if t, err := parseTS(row.LastUpdateDate.String); err == nil {
			s.LastUpdateDate = &t
		}
	}
	return s
}

// Create inserts a seller. An existing seller with the same name is returned untouched
// (insert-or-ignore), so seeding and signup retries are idempotent.
func (r *SellerRepo) Create(ctx context.Context, in domain.NewSeller) (*domain.Seller, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Passcode), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash passcode: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO sellers(name, passcode, last_update_date)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, in.Name, string(hash), formatTS(r.now())); err != nil {
		return nil, fmt.Errorf("insert seller: %w", err)
	}
	s, err := r.FindByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("seller %q vanished after insert", in.Name)
	}
	return s, nil
}

// FindByName returns nil, nil when no seller has that exact name.
func (r *SellerRepo) FindByName(ctx context.Context, name string) (*domain.Seller, error) {
	var row sellerRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT id, name, passcode, last_update_date FROM sellers WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seller by name: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SellerRepo) FindByID(ctx context.Context, id int64) (*domain.Seller, error) {
	var row sellerRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT id, name, passcode, last_update_date FROM sellers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seller by id: %w", err)
	}
	return row.toDomain(), nil
}

// FindByCredentials matches the name exactly and checks passcode against the stored hash.
// A wrong name and a wrong passcode look the same to the caller: nil, nil.
func (r *SellerRepo) FindByCredentials(ctx context.Context, name, passcode string) (*domain.Seller, error) {
	s, err := r.FindByName(ctx, name)
	if err != nil || s == nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(s.Passcode), []byte(passcode)) != nil {
		return nil, nil
	}
	return s, nil
}

// UpdatePasscode is the only mutation a seller goes through; it refreshes lastUpdateDate.
func (r *SellerRepo) UpdatePasscode(ctx context.Context, id int64, passcode string) error {
	if !validate.Passcode(passcode) {
		return &domain.ValidationError{Field: "passcode", Reason: "length out of range"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), r.cost)
	if err != nil {
		return fmt.Errorf("hash passcode: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE sellers SET passcode = ?, last_update_date = ? WHERE id = ?`,
		string(hash), formatTS(r.now()), id)
	if err != nil {
		return fmt.Errorf("update passcode: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "seller", ID: id}
	}
	return nil
}

func (r *SellerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM sellers`); err != nil {
		return 0, fmt.Errorf("count sellers: %w", err)
	}
	return n, nil
}
