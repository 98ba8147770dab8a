package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/contesthub/models"
)

var (
	ErrSubmissionConflict       = errors.New("submission already exists for this participant")
	ErrSubmissionNotParticipant = errors.New("submitter is not a contest participant")
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	ListByContest(ctx context.Context, contestID int) ([]models.Submission, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	query := `
		INSERT INTO submissions (contest_id, user_id, payload, submitted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, s.ContestID, s.UserID, s.Payload, s.SubmittedAt).Scan(&s.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err, "submissions_contest_user_key"):
			return ErrSubmissionConflict
		case isForeignKeyViolation(err, "submissions_participant_fkey"):
			return ErrSubmissionNotParticipant
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// ListByContest returns every submission, oldest first.
func (r *postgresSubmissionRepository) ListByContest(ctx context.Context, contestID int) ([]models.Submission, error) {
	query := `
		SELECT s.id, s.contest_id, s.user_id, s.payload, s.submitted_at,
			u.name, u.email, u.photo_url
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		WHERE s.contest_id = $1
		ORDER BY s.submitted_at ASC, s.id ASC`

	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		var u models.User
		var photo sql.NullString
		if err := rows.Scan(&s.ID, &s.ContestID, &s.UserID, &s.Payload, &s.SubmittedAt,
			&u.Name, &u.Email, &photo); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		u.ID = s.UserID
		if photo.Valid {
			u.PhotoURL = &photo.String
		}
		s.User = &u
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}
	return submissions, nil
}
