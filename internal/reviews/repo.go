package reviews

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct{ DB *pgxpool.Pool }

func (s *Store) FindByProduct(ctx context.Context, productID string) ([]Review, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, product_id, user_id, username, email, rating, comment, created_at
		FROM reviews WHERE product_id=$1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Username, &r.Email, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteByProduct purges reviews when their product is removed.
func (s *Store) DeleteByProduct(ctx context.Context, productID string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM reviews WHERE product_id=$1`, productID)
	return err
}
