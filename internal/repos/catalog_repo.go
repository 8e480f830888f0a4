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

	"stockbook/internal/domain"
	"stockbook/internal/validate"
)

// CatalogRepo stores products and accessories, one table per kind.
type CatalogRepo struct {
	db  sqlx.ExtContext
	now func() time.Time
}

func NewCatalogRepo(db sqlx.ExtContext) *CatalogRepo {
	return &CatalogRepo{db: db, now: time.Now}
}

// WithTx returns a repo whose statements run inside tx.
func (r *CatalogRepo) WithTx(tx *sqlx.Tx) *CatalogRepo {
	return &CatalogRepo{db: tx, now: r.now}
}

// WithClock overrides the time source used for createdAt/stockUpdatedAt.
func (r *CatalogRepo) WithClock(now func() time.Time) *CatalogRepo {
	return &CatalogRepo{db: r.db, now: now}
}

type itemRow struct {
	ID             int64           `db:"id"`
	Name           string          `db:"name"`
	Brand          string          `db:"brand"`
	Category       string          `db:"category"`
	Description    sql.NullString  `db:"description"`
	BasePrice      decimal.Decimal `db:"base_price"`
	Quantity       int             `db:"quantity"`
	ImageURI       sql.NullString  `db:"image_uri"`
	CreatedAt      string          `db:"created_at"`
	StockUpdatedAt string          `db:"stock_updated_at"`
}

func (row itemRow) toDomain(kind domain.Kind) (domain.CatalogItem, error) {
	created, err := parseTS(row.CreatedAt)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("%s %d created_at: %w", kind, row.ID, err)
	}
	touched, err := parseTS(row.StockUpdatedAt)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("%s %d stock_updated_at: %w", kind, row.ID, err)
	}
	return domain.CatalogItem{
		Kind:           kind,
		ID:             row.ID,
		Name:           row.Name,
		Brand:          row.Brand,
		Category:       row.Category,
		Description:    nullable(row.Description),
		BasePrice:      row.BasePrice,
		Quantity:       row.Quantity,
		ImageURI:       nullable(row.ImageURI),
		CreatedAt:      created,
		StockUpdatedAt: touched,
	}, nil
}

func table(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindProduct:
		return "products", nil
	case domain.KindAccessory:
		return "accessories", nil
	}
	return "", &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
}

// accessories have no brand column; it is selected as an empty string so both kinds share itemRow
func selectCols(kind domain.Kind) string {
	brand := "brand"
	if kind == domain.KindAccessory {
		brand = "'' AS brand"
	}
	return `id, name, ` + brand + `, category, description, base_price, quantity, image_uri, created_at, stock_updated_at`
}

// AddItem validates and inserts a new catalog item; createdAt and stockUpdatedAt are both set to now.
func (r *CatalogRepo) AddItem(ctx context.Context, kind domain.Kind, in domain.NewItem) (int64, error) {
	tbl, err := table(kind)
	if err != nil {
		return 0, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Item(kind, in); err != nil {
		return 0, err
	}
	ts := formatTS(r.now())

	var res sql.Result
	if kind == domain.KindProduct {
		res, err = r.db.ExecContext(ctx, `
			INSERT INTO products(name, brand, category, description, base_price, quantity, image_uri, created_at, stock_updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, in.Name, in.Brand, in.Category, in.Description, in.BasePrice, in.Quantity, in.ImageURI, ts, ts)
	} else {
		res, err = r.db.ExecContext(ctx, `
			INSERT INTO `+tbl+`(name, category, description, base_price, quantity, image_uri, created_at, stock_updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, in.Name, in.Category, in.Description, in.BasePrice, in.Quantity, in.ImageURI, ts, ts)
	}
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	return res.LastInsertId()
}

// UpdateItem replaces every editable field of the item. stockUpdatedAt moves only when the quantity changes.
// Unlike AddItem, a base price of 0 is accepted.
func (r *CatalogRepo) UpdateItem(ctx context.Context, it domain.CatalogItem) error {
	tbl, err := table(it.Kind)
	if err != nil {
		return err
	}
	it.Name = strings.TrimSpace(it.Name)
	in := domain.NewItem{
		Name: it.Name, Brand: it.Brand, Category: it.Category, Description: it.Description,
		BasePrice: it.BasePrice, Quantity: it.Quantity, ImageURI: it.ImageURI,
	}
	if err := validate.ItemEdit(it.Kind, in); err != nil {
		return err
	}
	ts := formatTS(r.now())

	brandSet, args := "", []any{it.Name}
	if it.Kind == domain.KindProduct {
		brandSet = "brand = ?, "
		args = append(args, it.Brand)
	}
	// SET expressions see the pre-update row, so the CASE compares against the old quantity
	args = append(args, it.Category, it.Description, it.BasePrice, it.Quantity, it.ImageURI, it.Quantity, ts, it.ID)
	res, err := r.db.ExecContext(ctx, `
		UPDATE `+tbl+`
		SET name = ?, `+brandSet+`category = ?, description = ?, base_price = ?, quantity = ?, image_uri = ?,
		    stock_updated_at = CASE WHEN quantity <> ? THEN ? ELSE stock_updated_at END
		WHERE id = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", it.Kind, it.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: string(it.Kind), ID: it.ID}
	}
	return nil
}

// GetByID returns *domain.NotFoundError when the id does not exist for that kind.
func (r *CatalogRepo) GetByID(ctx context.Context, kind domain.Kind, id int64) (domain.CatalogItem, error) {
	tbl, err := table(kind)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	var row itemRow
	err = sqlx.GetContext(ctx, r.db, &row, `SELECT `+selectCols(kind)+` FROM `+tbl+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogItem{}, &domain.NotFoundError{Entity: string(kind), ID: id}
	}
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return row.toDomain(kind)
}

// ListAll returns every item of kind, most recently restocked or added first.
func (r *CatalogRepo) ListAll(ctx context.Context, kind domain.Kind) ([]domain.CatalogItem, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT `+selectCols(kind)+`
		FROM `+tbl+`
		ORDER BY stock_updated_at DESC, id DESC
	`); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	out := make([]domain.CatalogItem, 0, len(rows))
	for _, row := range rows {
		it, err := row.toDomain(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// DecrementQuantity subtracts amount in a single guarded UPDATE, so concurrent decrements on
// the same id can never drive quantity below zero. It returns the new quantity.
func (r *CatalogRepo) DecrementQuantity(ctx context.Context, kind domain.Kind, id int64, amount int) (int, error) {
	tbl, err := table(kind)
	if err != nil {
		return 0, err
	}
	if amount < 1 {
		return 0, &domain.InvalidQuantityError{Quantity: amount}
	}
	var left int
	err = sqlx.GetContext(ctx, r.db, &left, `
		UPDATE `+tbl+`
		SET quantity = quantity - ?, stock_updated_at = ?
		WHERE id = ? AND quantity >= ?
		RETURNING quantity
	`, amount, formatTS(r.now()), id, amount)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("decrement %s %d: %w", kind, id, err)
	}

	// guard failed: either the row is gone or there is not enough stock
	qty, err := r.quantity(ctx, tbl, kind, id)
	if err != nil {
		return 0, err
	}
	return qty, &domain.InsufficientStockError{
		Ref: domain.ItemRef{Kind: kind, ID: id}, Requested: amount, Available: qty,
	}
}

func (r *CatalogRepo) quantity(ctx context.Context, tbl string, kind domain.Kind, id int64) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, `SELECT quantity FROM `+tbl+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Entity: string(kind), ID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("quantity %s %d: %w", kind, id, err)
	}
	return qty, nil
}

// Delete removes an item nothing references. Items with recorded sales are kept so the
// ledger never points at a missing row.
func (r *CatalogRepo) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}
	col := "product_id"
	if kind == domain.KindAccessory {
		col = "accessory_id"
	}
	var refs int
	if err := sqlx.GetContext(ctx, r.db, &refs, `SELECT COUNT(*) FROM sales WHERE `+col+` = ?`, id); err != nil {
		return fmt.Errorf("count sales for %s %d: %w", kind, id, err)
	}
	if refs > 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("%s %d has %d recorded sales", kind, id, refs)}
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: string(kind), ID: id}
	}
	return nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
