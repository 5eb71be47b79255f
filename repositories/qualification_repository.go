package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrQualificationRoundInvalid = errors.New("qualification round conflict or invalid")
	ErrQualificationTeamInvalid  = errors.New("qualification team conflict or invalid")
)

// QualificationRepository maintains the administrator-curated list of teams
// whose players are legal picks in a round. Presence of a (round, team) row
// means qualified.
type QualificationRepository interface {
	ReplaceForRound(ctx context.Context, exec SQLExecutor, round int, teamAbbrs []string) error
	MapForRound(ctx context.Context, exec SQLExecutor, round int) (map[string]bool, error)
}

type postgresQualificationRepository struct {
	db *sql.DB
}

func NewPostgresQualificationRepository(db *sql.DB) QualificationRepository {
	return &postgresQualificationRepository{db: db}
}

func (r *postgresQualificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForRound swaps a round's qualified list in one statement pair;
// callers pass a transaction when the swap must be atomic with other work.
func (r *postgresQualificationRepository) ReplaceForRound(ctx context.Context, exec SQLExecutor, round int, teamAbbrs []string) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM qualified_teams WHERE round_number = $1`, round); err != nil {
		return fmt.Errorf("failed to clear qualified teams for round %d: %w", round, err)
	}
	if len(teamAbbrs) == 0 {
		return nil
	}

	query := `
		INSERT INTO qualified_teams (round_number, team_abbr)
		SELECT $1, unnest($2::text[])`
	_, err := executor.ExecContext(ctx, query, round, pq.Array(teamAbbrs))
	if err != nil {
		return handleQualificationError(err)
	}
	return nil
}

func (r *postgresQualificationRepository) MapForRound(ctx context.Context, exec SQLExecutor, round int) (map[string]bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT team_abbr FROM qualified_teams WHERE round_number = $1`
	rows, err := executor.QueryContext(ctx, query, round)
	if err != nil {
		return nil, fmt.Errorf("failed to load qualified teams for round %d: %w", round, err)
	}
	defer rows.Close()

	qualified := make(map[string]bool)
	for rows.Next() {
		var abbr string
		if err := rows.Scan(&abbr); err != nil {
			return nil, err
		}
		qualified[abbr] = true
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return qualified, nil
}

func handleQualificationError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "qualified_teams_round_number_fkey":
			return ErrQualificationRoundInvalid
		case "qualified_teams_team_abbr_fkey":
			return ErrQualificationTeamInvalid
		}
	}
	return err
}
