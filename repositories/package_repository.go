package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/contesthub/models"
	"github.com/lib/pq"
)

var (
	ErrPlanNotFound     = errors.New("package plan not found")
	ErrPackageNotFound  = errors.New("creator package not found")
	ErrQuotaUnavailable = errors.New("no package quota available")
)

type PackageRepository interface {
	ListPlans(ctx context.Context) ([]models.PackagePlan, error)
	GetPlan(ctx context.Context, id int) (*models.PackagePlan, error)
	GetLatestForUser(ctx context.Context, userID int) (*models.CreatorPackage, error)
	Create(ctx context.Context, exec SQLExecutor, pkg *models.CreatorPackage) error
	ConsumeQuota(ctx context.Context, exec SQLExecutor, userID int, now time.Time) (*models.CreatorPackage, error)
}

type postgresPackageRepository struct {
	db *sql.DB
}

func NewPostgresPackageRepository(db *sql.DB) PackageRepository {
	return &postgresPackageRepository{db: db}
}

func (r *postgresPackageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const planColumns = `id, name, description, price, contest_limit, duration_days, features, color, popular`

func scanPlan(row rowScanner) (*models.PackagePlan, error) {
	var p models.PackagePlan
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ContestLimit, &p.DurationDays,
		pq.Array(&p.Features), &p.Color, &p.Popular)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresPackageRepository) ListPlans(ctx context.Context) ([]models.PackagePlan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+planColumns+` FROM package_plans ORDER BY price ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query package plans: %w", err)
	}
	defer rows.Close()

	plans := make([]models.PackagePlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package plan row: %w", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating package plan rows: %w", err)
	}
	return plans, nil
}

func (r *postgresPackageRepository) GetPlan(ctx context.Context, id int) (*models.PackagePlan, error) {
	p, err := scanPlan(r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM package_plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get package plan: %w", err)
	}
	return p, nil
}

const packageColumns = `id, user_id, plan_id, plan_name, contest_limit, contests_used, payment_ref, purchased_at, expires_at`

func scanPackage(row rowScanner) (*models.CreatorPackage, error) {
	var p models.CreatorPackage
	err := row.Scan(&p.ID, &p.UserID, &p.PlanID, &p.PlanName, &p.ContestLimit, &p.ContestsUsed,
		&p.PaymentRef, &p.PurchasedAt, &p.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresPackageRepository) GetLatestForUser(ctx context.Context, userID int) (*models.CreatorPackage, error) {
	query := `SELECT ` + packageColumns + ` FROM creator_packages
		WHERE user_id = $1
		ORDER BY purchased_at DESC, id DESC
		LIMIT 1`
	p, err := scanPackage(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to get creator package: %w", err)
	}
	return p, nil
}

func (r *postgresPackageRepository) Create(ctx context.Context, exec SQLExecutor, p *models.CreatorPackage) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO creator_packages (user_id, plan_id, plan_name, contest_limit, contests_used, payment_ref, purchased_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		p.UserID, p.PlanID, p.PlanName, p.ContestLimit, p.ContestsUsed, p.PaymentRef, p.PurchasedAt, p.ExpiresAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create creator package: %w", err)
	}
	return nil
}

// ConsumeQuota takes one contest slot from the user's latest package in a single
// conditional UPDATE. ErrQuotaUnavailable means expired or exhausted.
func (r *postgresPackageRepository) ConsumeQuota(ctx context.Context, exec SQLExecutor, userID int, now time.Time) (*models.CreatorPackage, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE creator_packages
		SET contests_used = contests_used + 1
		WHERE id = (
				SELECT id FROM creator_packages
				WHERE user_id = $1
				ORDER BY purchased_at DESC, id DESC
				LIMIT 1
			)
			AND expires_at > $2
			AND (contest_limit = -1 OR contests_used < contest_limit)
		RETURNING ` + packageColumns

	p, err := scanPackage(executor.QueryRowContext(ctx, query, userID, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuotaUnavailable
		}
		return nil, fmt.Errorf("failed to consume package quota: %w", err)
	}
	return p, nil
}
