package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamAbbrConflict = errors.New("team with this abbreviation already exists")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByAbbreviation(ctx context.Context, exec SQLExecutor, abbr string) (*models.Team, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Team, error)
	MarkEliminated(ctx context.Context, exec SQLExecutor, abbr string, round int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) scanTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := rowScanner.Scan(&t.Abbreviation, &t.Name, &t.Conference, &t.Eliminated, &t.EliminationRound)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (abbreviation, name, conference, eliminated, elimination_round)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := executor.ExecContext(ctx, query,
		team.Abbreviation, team.Name, team.Conference, team.Eliminated, team.EliminationRound,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrTeamAbbrConflict
		}
		return fmt.Errorf("failed to create team %s: %w", team.Abbreviation, err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByAbbreviation(ctx context.Context, exec SQLExecutor, abbr string) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT abbreviation, name, conference, eliminated, elimination_round
		FROM teams
		WHERE abbreviation = $1`
	row := executor.QueryRowContext(ctx, query, abbr)
	return r.scanTeam(row)
}

func (r *postgresTeamRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT abbreviation, name, conference, eliminated, elimination_round
		FROM teams
		ORDER BY conference ASC, abbreviation ASC`
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, errScan := r.scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) MarkEliminated(ctx context.Context, exec SQLExecutor, abbr string, round int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET eliminated = TRUE, elimination_round = $1
		WHERE abbreviation = $2`
	result, err := executor.ExecContext(ctx, query, round, abbr)
	if err != nil {
		return fmt.Errorf("failed to mark team %s eliminated: %w", abbr, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
