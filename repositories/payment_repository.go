package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/contesthub/models"
)

var ErrPaymentDuplicate = errors.New("payment reference already recorded")

type PaymentRepository interface {
	Record(ctx context.Context, exec SQLExecutor, payment *models.Payment) error
}

type postgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

func (r *postgresPaymentRepository) Record(ctx context.Context, exec SQLExecutor, p *models.Payment) error {
	executor := exec
	if executor == nil {
		executor = r.db
	}

	query := `
		INSERT INTO payments (reference, user_id, purpose, subject_id, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query, p.Reference, p.UserID, p.Purpose, p.SubjectID, p.Amount).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err, "payments_reference_key") {
			return ErrPaymentDuplicate
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}
