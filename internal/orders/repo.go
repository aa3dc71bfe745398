package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Store struct{ DB *pgxpool.Pool }

const orderColumns = `id, order_ref, lines, amount_baisa, shipping_baisa,
	customer_name, customer_phone, country, gulf_country, wilayat, description, email,
	status, deposit_mode, remaining_baisa, payment_session_id, paid_at, gift,
	created_at, updated_at`

func (s *Store) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}
	gift, err := marshalGift(o.Gift)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err = s.DB.Exec(ctx, `
		INSERT INTO orders(id, order_ref, lines, amount_baisa, shipping_baisa,
			customer_name, customer_phone, country, gulf_country, wilayat, description, email,
			status, deposit_mode, remaining_baisa, payment_session_id, paid_at, gift,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		o.ID, o.OrderRef, lines, o.AmountBaisa, o.ShippingBaisa,
		o.CustomerName, o.CustomerPhone, o.Country, o.GulfCountry, o.Wilayat, o.Description, o.Email,
		string(o.Status), o.DepositMode, o.RemainingBaisa, nullIfEmpty(o.PaymentSessionID), o.PaidAt, gift,
		o.CreatedAt, o.UpdatedAt,
	)
	return err
}

// Update rewrites every mutable field; the reconciler uses it after
// merging cache and metadata into the loaded record.
func (s *Store) Update(ctx context.Context, o *Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}
	gift, err := marshalGift(o.Gift)
	if err != nil {
		return err
	}
	o.UpdatedAt = time.Now().UTC()
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET lines=$2, amount_baisa=$3, shipping_baisa=$4,
			customer_name=$5, customer_phone=$6, country=$7, gulf_country=$8,
			wilayat=$9, description=$10, email=$11, status=$12, deposit_mode=$13,
			remaining_baisa=$14, payment_session_id=$15, paid_at=$16, gift=$17,
			updated_at=$18
		WHERE id=$1`,
		o.ID, lines, o.AmountBaisa, o.ShippingBaisa,
		o.CustomerName, o.CustomerPhone, o.Country, o.GulfCountry,
		o.Wilayat, o.Description, o.Email, string(o.Status), o.DepositMode,
		o.RemainingBaisa, nullIfEmpty(o.PaymentSessionID), o.PaidAt, gift,
		o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*Order, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

func (s *Store) FindByRef(ctx context.Context, ref string) (*Order, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_ref=$1`, ref)
	return scanOrder(row)
}

func (s *Store) FindByEmail(ctx context.Context, email string) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE email=$1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (s *Store) ListCompleted(ctx context.Context) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY created_at DESC`, string(StatusCompleted))
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, string(status))
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) (*Order, error) {
	o, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o         Order
		lines     []byte
		gift      []byte
		status    string
		sessionID *string
	)
	err := row.Scan(&o.ID, &o.OrderRef, &lines, &o.AmountBaisa, &o.ShippingBaisa,
		&o.CustomerName, &o.CustomerPhone, &o.Country, &o.GulfCountry, &o.Wilayat, &o.Description, &o.Email,
		&status, &o.DepositMode, &o.RemainingBaisa, &sessionID, &o.PaidAt, &gift,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if sessionID != nil {
		o.PaymentSessionID = *sessionID
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &o.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal lines: %w", err)
		}
	}
	if len(gift) > 0 {
		var g GiftNote
		if err := json.Unmarshal(gift, &g); err != nil {
			return nil, fmt.Errorf("unmarshal gift: %w", err)
		}
		o.Gift = g.Normalize()
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func marshalGift(g *GiftNote) ([]byte, error) {
	if g.Normalize() == nil {
		return nil, nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal gift: %w", err)
	}
	return b, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
