package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/xerrors"

	"storefront/model"
)

// OrderRow and ProductRow mirror the table columns. The shipping address is
// flattened; items, includes and gallery are stored as JSONB / TEXT[].
type OrderRow struct {
	ID            string
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	ZipCode       string
	City          string
	Country       string
	PaymentMethod string
	Items         []model.CartItem
	Subtotal      float64
	Shipping      float64
	VAT           float64
	GrandTotal    float64
	Status        string
	CreatedAt     time.Time
}

type ProductRow struct {
	ID          string
	Name        string
	ShortName   string
	Description sql.NullString
	Price       float64
	Category    string
	Image       string
	Gallery     []string
	Features    sql.NullString
	Includes    []model.IncludedItem
	New         bool
}

// PostgresStore is a Store backed by Postgres.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	DB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := DB.Ping(); err != nil {
		_ = DB.Close()
		return nil, err
	}
	return &PostgresStore{DB: DB}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// Migrate runs the schema script. It is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context, schema string) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return xerrors.Errorf("migrate: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, customer_name, customer_email, customer_phone,
	address, zip_code, city, country, payment_method, items,
	subtotal, shipping, vat, grand_total, status, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(r rowScanner) (OrderRow, error) {
	var (
		o     OrderRow
		items []byte
	)
	if err := r.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Address, &o.ZipCode, &o.City, &o.Country, &o.PaymentMethod, &items,
		&o.Subtotal, &o.Shipping, &o.VAT, &o.GrandTotal, &o.Status, &o.CreatedAt,
	); err != nil {
		return OrderRow{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return OrderRow{}, err
	}
	return o, nil
}

// InsertOrder writes a single order row. A clash on order_number is reported
// as ErrDuplicateOrderNumber so the caller can pick a new number.
func (s *PostgresStore) InsertOrder(ctx context.Context, o OrderRow) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return xerrors.Errorf("encode order items: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		o.ID, o.OrderNumber, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.Address, o.ZipCode, o.City, o.Country, o.PaymentMethod, items,
		o.Subtotal, o.Shipping, o.VAT, o.GrandTotal, o.Status, o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return wrap("insert order", ErrDuplicateOrderNumber, err)
		}
		return wrap("insert order", ErrUnavailable, err)
	}
	return nil
}

// UpdateOrderStatus overwrites the status. Any string is accepted.
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if _, err := uuid.Parse(id); err != nil {
		return wrap("update order status", ErrNotFound, nil)
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return wrap("update order status", ErrUnavailable, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return wrap("update order status", ErrUnavailable, err)
	}
	if ra == 0 {
		return wrap("update order status", ErrNotFound, nil)
	}
	return nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (OrderRow, error) {
	if _, err := uuid.Parse(id); err != nil {
		return OrderRow{}, wrap("get order", ErrNotFound, nil)
	}
	o, err := scanOrder(s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return OrderRow{}, classifyRead("get order", err)
	}
	return o, nil
}

func (s *PostgresStore) GetOrderByNumber(ctx context.Context, orderNumber string) (OrderRow, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number=$1 LIMIT 1`, orderNumber))
	if err != nil {
		return OrderRow{}, classifyRead("get order by number", err)
	}
	return o, nil
}

func (s *PostgresStore) ListOrdersByEmail(ctx context.Context, email string) ([]OrderRow, error) {
	return s.listOrders(ctx, "list orders by email",
		`SELECT `+orderColumns+` FROM orders WHERE customer_email=$1 ORDER BY created_at DESC`, email)
}

func (s *PostgresStore) ListOrders(ctx context.Context) ([]OrderRow, error) {
	return s.listOrders(ctx, "list orders",
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (s *PostgresStore) listOrders(ctx context.Context, op, query string, args ...interface{}) ([]OrderRow, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, ErrUnavailable, err)
	}
	defer rows.Close()
	out := []OrderRow{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, wrap(op, ErrUnavailable, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, ErrUnavailable, err)
	}
	return out, nil
}

const productColumns = `id, name, short_name, description, price, category, image, gallery, features, includes, is_new`

func scanProduct(r rowScanner) (ProductRow, error) {
	var (
		p        ProductRow
		includes []byte
	)
	if err := r.Scan(
		&p.ID, &p.Name, &p.ShortName, &p.Description, &p.Price, &p.Category, &p.Image,
		pq.Array(&p.Gallery), &p.Features, &includes, &p.New,
	); err != nil {
		return ProductRow{}, err
	}
	if len(includes) > 0 {
		if err := json.Unmarshal(includes, &p.Includes); err != nil {
			return ProductRow{}, err
		}
	}
	return p, nil
}

// CreateProduct inserts a product under its own id.
func (s *PostgresStore) CreateProduct(ctx context.Context, p ProductRow) error {
	includes, err := json.Marshal(p.Includes)
	if err != nil {
		return xerrors.Errorf("encode product includes: %w", err)
	}
	gallery := p.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.Name, p.ShortName, p.Description, p.Price, p.Category, p.Image,
		pq.Array(gallery), p.Features, includes, p.New,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return wrap("create product", ErrDuplicateProduct, err)
		}
		return wrap("create product", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]ProductRow, error) {
	return s.listProducts(ctx, "list products", `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (s *PostgresStore) ListProductsByCategory(ctx context.Context, category string) ([]ProductRow, error) {
	return s.listProducts(ctx, "list products by category",
		`SELECT `+productColumns+` FROM products WHERE category=$1 ORDER BY id`, category)
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (ProductRow, error) {
	p, err := scanProduct(s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return ProductRow{}, classifyRead("get product", err)
	}
	return p, nil
}

func (s *PostgresStore) listProducts(ctx context.Context, op, query string, args ...interface{}) ([]ProductRow, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, ErrUnavailable, err)
	}
	defer rows.Close()
	out := []ProductRow{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrap(op, ErrUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, ErrUnavailable, err)
	}
	return out, nil
}
