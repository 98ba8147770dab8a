package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/contesthub/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrContestNotFound      = errors.New("contest not found")
	ErrContestStateConflict = errors.New("contest state changed concurrently")
	ErrContestInvalidOwner  = errors.New("invalid contest creator reference")
	ErrAlreadyParticipant   = errors.New("user already participates in contest")
	ErrWinnerAlreadySet     = errors.New("contest winner already set")
)

type ListContestsFilter struct {
	Status        *models.ContestStatus
	Type          *models.ContestType
	CreatorID     *int
	ParticipantID *int
	WinnerID      *int
	Search        string
	Limit         int
	Offset        int
}

type ContestRepository interface {
	Create(ctx context.Context, exec SQLExecutor, contest *models.Contest) error
	GetByID(ctx context.Context, id int) (*models.Contest, error)
	List(ctx context.Context, filter ListContestsFilter) ([]models.Contest, error)
	Popular(ctx context.Context, limit int) ([]models.Contest, error)
	RecentWinners(ctx context.Context, limit int) ([]models.RecentWinner, error)
	Update(ctx context.Context, contest *models.Contest) error
	UpdateStatus(ctx context.Context, id int, from, to models.ContestStatus) error
	UpdateImage(ctx context.Context, id int, imageURL, imageKey *string) error
	Delete(ctx context.Context, id int, requireStatus *models.ContestStatus) error
	AddParticipant(ctx context.Context, exec SQLExecutor, contestID, userID int, paymentRef string, now time.Time) error
	IsParticipant(ctx context.Context, contestID, userID int) (bool, error)
	SetWinner(ctx context.Context, exec SQLExecutor, contestID, winnerID int, now time.Time) error
	Count(ctx context.Context, status *models.ContestStatus) (int, error)
	TotalPrizePool(ctx context.Context) (decimal.Decimal, error)
}

type postgresContestRepository struct {
	db *sql.DB
}

func NewPostgresContestRepository(db *sql.DB) ContestRepository {
	return &postgresContestRepository{db: db}
}

func (r *postgresContestRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const contestSelect = `
	SELECT
		c.id, c.creator_id, c.name, c.slug, c.description, c.task_instruction,
		c.image_url, c.image_key, c.type, c.price, c.prize, c.deadline, c.status,
		c.winner_id, c.winner_declared_at, c.created_at,
		COALESCE((SELECT array_agg(p.user_id ORDER BY p.joined_at, p.user_id)
			FROM contest_participants p WHERE p.contest_id = c.id), '{}') AS participants,
		uc.name, uc.photo_url,
		uw.name, uw.photo_url
	FROM contests c
	JOIN users uc ON uc.id = c.creator_id
	LEFT JOIN users uw ON uw.id = c.winner_id`

func scanContest(row rowScanner) (*models.Contest, error) {
	var (
		c                     models.Contest
		imageURL, imageKey    sql.NullString
		winnerID              sql.NullInt64
		declaredAt            sql.NullTime
		participants          []int64
		creatorName           string
		creatorPhoto          sql.NullString
		winnerName, winnerPic sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.CreatorID, &c.Name, &c.Slug, &c.Description, &c.TaskInstruction,
		&imageURL, &imageKey, &c.Type, &c.Price, &c.Prize, &c.Deadline, &c.Status,
		&winnerID, &declaredAt, &c.CreatedAt,
		pq.Array(&participants),
		&creatorName, &creatorPhoto,
		&winnerName, &winnerPic,
	)
	if err != nil {
		return nil, err
	}

	if imageURL.Valid {
		c.ImageURL = &imageURL.String
	}
	if imageKey.Valid {
		c.ImageKey = &imageKey.String
	}
	if declaredAt.Valid {
		c.WinnerDeclaredAt = &declaredAt.Time
	}

	c.Participants = make([]int, len(participants))
	for i, id := range participants {
		c.Participants[i] = int(id)
	}
	c.ParticipantsCount = len(c.Participants)

	c.Creator = &models.User{ID: c.CreatorID, Name: creatorName}
	if creatorPhoto.Valid {
		c.Creator.PhotoURL = &creatorPhoto.String
	}

	if winnerID.Valid {
		id := int(winnerID.Int64)
		c.WinnerID = &id
		c.Winner = &models.User{ID: id, Name: winnerName.String}
		if winnerPic.Valid {
			c.Winner.PhotoURL = &winnerPic.String
		}
	}

	return &c, nil
}

func (r *postgresContestRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Contest) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO contests (
			creator_id, name, slug, description, task_instruction, image_url, type, price, prize, deadline, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		c.CreatorID, c.Name, c.Slug, c.Description, c.TaskInstruction, c.ImageURL,
		c.Type, c.Price, c.Prize, c.Deadline, c.Status,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "") {
			return ErrContestInvalidOwner
		}
		return fmt.Errorf("failed to create contest: %w", err)
	}
	c.Participants = []int{}
	return nil
}

func (r *postgresContestRepository) GetByID(ctx context.Context, id int) (*models.Contest, error) {
	c, err := scanContest(r.db.QueryRowContext(ctx, contestSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to get contest by id: %w", err)
	}
	return c, nil
}

func (r *postgresContestRepository) List(ctx context.Context, filter ListContestsFilter) ([]models.Contest, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("c.status = $%d", *filter.Status)
	}
	if filter.Type != nil {
		add("c.type = $%d", *filter.Type)
	}
	if filter.CreatorID != nil {
		add("c.creator_id = $%d", *filter.CreatorID)
	}
	if filter.ParticipantID != nil {
		add("EXISTS (SELECT 1 FROM contest_participants p WHERE p.contest_id = c.id AND p.user_id = $%d)", *filter.ParticipantID)
	}
	if filter.WinnerID != nil {
		add("c.winner_id = $%d", *filter.WinnerID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		add(`c.name ILIKE $%d ESCAPE '\'`, containsPattern(s))
	}

	query := contestSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.created_at DESC, c.id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.queryContests(ctx, query, args...)
}

func (r *postgresContestRepository) Popular(ctx context.Context, limit int) ([]models.Contest, error) {
	query := contestSelect + `
		WHERE c.status = 'confirmed'
		ORDER BY (SELECT COUNT(*) FROM contest_participants p WHERE p.contest_id = c.id) DESC, c.created_at DESC
		LIMIT $1`
	return r.queryContests(ctx, query, limit)
}

func (r *postgresContestRepository) RecentWinners(ctx context.Context, limit int) ([]models.RecentWinner, error) {
	query := `
		SELECT c.id, c.name, c.type, c.prize, u.id, u.name, u.photo_url, c.winner_declared_at
		FROM contests c
		JOIN users u ON u.id = c.winner_id
		WHERE c.winner_id IS NOT NULL
		ORDER BY c.winner_declared_at DESC NULLS LAST, c.id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent winners: %w", err)
	}
	defer rows.Close()

	winners := make([]models.RecentWinner, 0)
	for rows.Next() {
		var w models.RecentWinner
		var photo sql.NullString
		var declaredAt sql.NullTime
		if err := rows.Scan(&w.ContestID, &w.ContestName, &w.ContestType, &w.Prize,
			&w.WinnerID, &w.WinnerName, &photo, &declaredAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent winner row: %w", err)
		}
		if photo.Valid {
			w.WinnerPhoto = &photo.String
		}
		w.DeclaredAt = declaredAt.Time
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent winner rows: %w", err)
	}
	return winners, nil
}

// Update only applies while the contest is still pending.
func (r *postgresContestRepository) Update(ctx context.Context, c *models.Contest) error {
	query := `
		UPDATE contests
		SET name = $1, slug = $2, description = $3, task_instruction = $4, image_url = $5,
			type = $6, price = $7, prize = $8, deadline = $9
		WHERE id = $10 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query,
		c.Name, c.Slug, c.Description, c.TaskInstruction, c.ImageURL,
		c.Type, c.Price, c.Prize, c.Deadline, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contest: %w", err)
	}
	return checkAffectedRows(result, ErrContestStateConflict)
}

func (r *postgresContestRepository) UpdateStatus(ctx context.Context, id int, from, to models.ContestStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contests SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update contest status: %w", err)
	}
	return checkAffectedRows(result, ErrContestStateConflict)
}

func (r *postgresContestRepository) UpdateImage(ctx context.Context, id int, imageURL, imageKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contests SET image_url = $1, image_key = $2 WHERE id = $3 AND status = 'pending'`,
		imageURL, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update contest image: %w", err)
	}
	return checkAffectedRows(result, ErrContestStateConflict)
}

// Delete removes the contest. With requireStatus set, the row must still be in that status.
func (r *postgresContestRepository) Delete(ctx context.Context, id int, requireStatus *models.ContestStatus) error {
	var (
		result sql.Result
		err    error
	)
	if requireStatus != nil {
		result, err = r.db.ExecContext(ctx, `DELETE FROM contests WHERE id = $1 AND status = $2`, id, *requireStatus)
	} else {
		result, err = r.db.ExecContext(ctx, `DELETE FROM contests WHERE id = $1`, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}
	if requireStatus != nil {
		return checkAffectedRows(result, ErrContestStateConflict)
	}
	return checkAffectedRows(result, ErrContestNotFound)
}

// AddParticipant inserts only while the contest is confirmed and open at now.
func (r *postgresContestRepository) AddParticipant(ctx context.Context, exec SQLExecutor, contestID, userID int, paymentRef string, now time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO contest_participants (contest_id, user_id, payment_ref, joined_at)
		SELECT c.id, $2, $3, $4
		FROM contests c
		WHERE c.id = $1 AND c.status = 'confirmed' AND c.deadline > $4`

	result, err := executor.ExecContext(ctx, query, contestID, userID, paymentRef, now)
	if err != nil {
		if isUniqueViolation(err, "contest_participants_pkey") {
			return ErrAlreadyParticipant
		}
		return fmt.Errorf("failed to add contest participant: %w", err)
	}
	return checkAffectedRows(result, ErrContestStateConflict)
}

func (r *postgresContestRepository) IsParticipant(ctx context.Context, contestID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contest_participants WHERE contest_id = $1 AND user_id = $2)`,
		contestID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check contest participant: %w", err)
	}
	return exists, nil
}

// SetWinner succeeds once per contest; the winner must already be a participant.
func (r *postgresContestRepository) SetWinner(ctx context.Context, exec SQLExecutor, contestID, winnerID int, now time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE contests
		SET winner_id = $1, winner_declared_at = $2
		WHERE id = $3
			AND winner_id IS NULL
			AND status = 'confirmed'
			AND EXISTS (SELECT 1 FROM contest_participants p WHERE p.contest_id = $3 AND p.user_id = $1)`

	result, err := executor.ExecContext(ctx, query, winnerID, now, contestID)
	if err != nil {
		return fmt.Errorf("failed to set contest winner: %w", err)
	}
	return checkAffectedRows(result, ErrWinnerAlreadySet)
}

func (r *postgresContestRepository) Count(ctx context.Context, status *models.ContestStatus) (int, error) {
	var count int
	var err error
	if status == nil {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contests`).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contests WHERE status = $1`, *status).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count contests: %w", err)
	}
	return count, nil
}

func (r *postgresContestRepository) TotalPrizePool(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(prize), 0) FROM contests WHERE status = 'confirmed'`,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum prize pool: %w", err)
	}
	return total, nil
}

func (r *postgresContestRepository) queryContests(ctx context.Context, query string, args ...interface{}) ([]models.Contest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contests: %w", err)
	}
	defer rows.Close()

	contests := make([]models.Contest, 0)
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contest row: %w", err)
		}
		contests = append(contests, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contest rows: %w", err)
	}
	return contests, nil
}
