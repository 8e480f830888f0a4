package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"stockbook/internal/domain"
)

// SaleRepo is the append-only sale ledger. The ItemRef sum type is flattened into the
// product_id/accessory_id pair here and nowhere else.
type SaleRepo struct {
	db  sqlx.ExtContext
	now func() time.Time
}

func NewSaleRepo(db sqlx.ExtContext) *SaleRepo { return &SaleRepo{db: db, now: time.Now} }

func (r *SaleRepo) WithTx(tx *sqlx.Tx) *SaleRepo { return &SaleRepo{db: tx, now: r.now} }

func (r *SaleRepo) WithClock(now func() time.Time) *SaleRepo { return &SaleRepo{db: r.db, now: now} }

type saleRow struct {
	ID            int64           `db:"id"`
	SellerID      int64           `db:"seller_id"`
	ProductID     sql.NullInt64   `db:"product_id"`
	AccessoryID   sql.NullInt64   `db:"accessory_id"`
	Quantity      int             `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	Color         sql.NullString  `db:"color"`
	IMEI          sql.NullString  `db:"imei"`
	RAM           sql.NullInt64   `db:"ram"`
	ROM           sql.NullInt64   `db:"rom"`
	APN           sql.NullInt64   `db:"apn"`
	AttachmentURI sql.NullString  `db:"attachment_uri"`
	CreatedAt     string          `db:"created_at"`
}

const saleCols = `id, seller_id, product_id, accessory_id, quantity, unit_price, color, imei, ram, rom, apn, attachment_uri, created_at`

// encodeRef turns the sum type into the nullable FK pair.
func encodeRef(ref domain.ItemRef) (product, accessory sql.NullInt64, err error) {
	if ref.ID <= 0 {
		return product, accessory, &domain.ValidationError{Field: "item", Reason: "id must be positive"}
	}
	switch ref.Kind {
	case domain.KindProduct:
		product = sql.NullInt64{Int64: ref.ID, Valid: true}
	case domain.KindAccessory:
		accessory = sql.NullInt64{Int64: ref.ID, Valid: true}
	default:
		return product, accessory, &domain.ValidationError{Field: "item", Reason: fmt.Sprintf("unknown kind %q", ref.Kind)}
	}
	return product, accessory, nil
}

// decodeRef rejects rows where both or neither of the FKs are set.
func decodeRef(id int64, product, accessory sql.NullInt64) (domain.ItemRef, error) {
	switch {
	case product.Valid && !accessory.Valid:
		return domain.ItemRef{Kind: domain.KindProduct, ID: product.Int64}, nil
	case accessory.Valid && !product.Valid:
		return domain.ItemRef{Kind: domain.KindAccessory, ID: accessory.Int64}, nil
	}
	return domain.ItemRef{}, fmt.Errorf("sale %d: exactly one of product_id/accessory_id must be set", id)
}

func (row saleRow) toDomain() (domain.Sale, error) {
	ref, err := decodeRef(row.ID, row.ProductID, row.AccessoryID)
	if err != nil {
		return domain.Sale{}, err
	}
	created, err := parseTS(row.CreatedAt)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale %d created_at: %w", row.ID, err)
	}
	return domain.Sale{
		ID:        row.ID,
		SellerID:  row.SellerID,
		Item:      ref,
		Quantity:  row.Quantity,
		UnitPrice: row.UnitPrice,
		Extras: domain.Extras{
			Color:         nullable(row.Color),
			IMEI:          nullable(row.IMEI),
			RAM:           nullableInt(row.RAM),
			ROM:           nullableInt(row.ROM),
			APN:           nullableInt(row.APN),
			AttachmentURI: nullable(row.AttachmentURI),
		},
		CreatedAt: created,
	}, nil
}

// Append stores s as given. Stock is not checked here; that is the caller's transaction's job.
// A zero CreatedAt is stamped with the repo clock.
func (r *SaleRepo) Append(ctx context.Context, s domain.Sale) (int64, error) {
	product, accessory, err := encodeRef(s.Item)
	if err != nil {
		return 0, err
	}
	created := s.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sales(seller_id, product_id, accessory_id, quantity, unit_price,
		                  color, imei, ram, rom, apn, attachment_uri, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.SellerID, product, accessory, s.Quantity, s.UnitPrice,
		s.Color, s.IMEI, s.RAM, s.ROM, s.APN, s.AttachmentURI, formatTS(created))
	if err != nil {
		if isUniqueViolation(err, "sales.imei") {
			return 0, &domain.ValidationError{Field: "imei", Reason: "already recorded on another sale"}
		}
		return 0, fmt.Errorf("insert sale: %w", err)
	}
	return res.LastInsertId()
}

func (r *SaleRepo) GetByID(ctx context.Context, id int64) (domain.Sale, error) {
	var row saleRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+saleCols+` FROM sales WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, &domain.NotFoundError{Entity: "sale", ID: id}
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("get sale %d: %w", id, err)
	}
	return row.toDomain()
}

// ListAll returns the ledger newest first.
func (r *SaleRepo) ListAll(ctx context.Context) ([]domain.Sale, error) {
	var rows []saleRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT `+saleCols+`
		FROM sales
		ORDER BY created_at DESC, id DESC
	`); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	out := make([]domain.Sale, 0, len(rows))
	for _, row := range rows {
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SaleRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM sales`); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// CountForItem counts ledger rows referencing ref.
func (r *SaleRepo) CountForItem(ctx context.Context, ref domain.ItemRef) (int, error) {
	product, accessory, err := encodeRef(ref)
	if err != nil {
		return 0, err
	}
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `
		SELECT COUNT(*) FROM sales WHERE product_id IS ? AND accessory_id IS ?
	`, product, accessory); err != nil {
		return 0, fmt.Errorf("count sales for %s %d: %w", ref.Kind, ref.ID, err)
	}
	return n, nil
}

func isUniqueViolation(err error, column string) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE && strings.Contains(se.Error(), column)
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
