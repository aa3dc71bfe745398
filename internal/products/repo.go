package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Store struct{ DB *pgxpool.Pool }

const productColumns = `id, name, category, description, price_baisa, old_price_baisa,
	images, rating, author, size_ml, in_stock, stock, created_at, updated_at`

func (s *Store) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.DB.Exec(ctx, `
		INSERT INTO products(id, name, category, description, price_baisa, old_price_baisa,
			images, rating, author, size_ml, in_stock, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.Name, p.Category, p.Description, p.PriceBaisa, p.OldPriceBaisa,
		p.Images, p.Rating, p.Author, p.SizeML, p.InStock, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *Store) FindByID(ctx context.Context, id string) (*Product, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	return scanProduct(row)
}

// List applies the filter and returns the page plus the unpaged total.
func (s *Store) List(ctx context.Context, f Filter) ([]Product, int, error) {
	conds := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Category != "" && f.Category != "all" {
		conds = append(conds, "category = "+arg(f.Category))
		if f.SizeML != nil {
			conds = append(conds, "size_ml = "+arg(*f.SizeML))
		}
	}
	if f.MinBaisa != nil && f.MaxBaisa != nil {
		conds = append(conds, "price_baisa BETWEEN "+arg(*f.MinBaisa)+" AND "+arg(*f.MaxBaisa))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg((page-1)*limit)
	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectProducts(rows)
	return out, total, err
}

func (s *Store) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()
	ct, err := s.DB.Exec(ctx, `
		UPDATE products SET name=$2, category=$3, description=$4, price_baisa=$5,
			old_price_baisa=$6, images=$7, author=$8, size_ml=$9, in_stock=$10,
			stock=$11, updated_at=$12
		WHERE id=$1`,
		p.ID, p.Name, p.Category, p.Description, p.PriceBaisa,
		p.OldPriceBaisa, p.Images, p.Author, p.SizeML, p.InStock,
		p.Stock, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Related returns products in the same category or whose name shares a
// word with the given product.
func (s *Store) Related(ctx context.Context, id string) ([]Product, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, w := range strings.Fields(p.Name) {
		if len(w) > 1 {
			patterns = append(patterns, "%"+w+"%")
		}
	}
	rows, err := s.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE id <> $1 AND (category = $2 OR name ILIKE ANY($3))
		ORDER BY created_at DESC`,
		id, p.Category, patterns)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// DecrementStock deducts qty atomically, clamped at zero. Both
// expressions read the pre-update stock, so in_stock flips to false
// exactly when the deduction lands on zero. Returns the remaining
// stock and whether a row was updated.
func (s *Store) DecrementStock(ctx context.Context, id string, qty int) (int, bool, error) {
	var stock int
	err := s.DB.QueryRow(ctx, `
		UPDATE products
		SET stock = GREATEST(0, stock - $2),
		    in_stock = (stock - $2) > 0,
		    updated_at = now()
		WHERE id = $1
		RETURNING stock`, id, qty).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.PriceBaisa, &p.OldPriceBaisa,
		&p.Images, &p.Rating, &p.Author, &p.SizeML, &p.InStock, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
