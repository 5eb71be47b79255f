package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound           = errors.New("player not found")
	ErrPlayerExternalIDConflict = errors.New("player with this external id already exists")
	ErrPlayerTeamInvalid        = errors.New("player team conflict or invalid")
)

type PlayerFilter struct {
	TeamAbbr          *string
	Position          *models.PlayerPosition
	Active            *bool
	QualifiedForRound *int
}

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	List(ctx context.Context, exec SQLExecutor, filter PlayerFilter) ([]*models.Player, error)
	ListActive(ctx context.Context, exec SQLExecutor) ([]*models.Player, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `
	p.id, p.external_id, p.full_name, p.team_abbr, p.position, p.cost, p.active, p.created_at,
	t.abbreviation, t.name, t.conference, t.eliminated, t.elimination_round`

func (r *postgresPlayerRepository) scanPlayer(rowScanner interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	var t models.Team
	err := rowScanner.Scan(
		&p.ID, &p.ExternalID, &p.FullName, &p.TeamAbbr, &p.Position, &p.Cost, &p.Active, &p.CreatedAt,
		&t.Abbreviation, &t.Name, &t.Conference, &t.Eliminated, &t.EliminationRound,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	p.Team = &t
	return &p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (external_id, full_name, team_abbr, position, cost, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		player.ExternalID, player.FullName, player.TeamAbbr, player.Position, player.Cost, player.Active,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		return handlePlayerError(err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT` + playerColumns + `
		FROM players p
		JOIN teams t ON p.team_abbr = t.abbreviation
		WHERE p.id = $1`
	row := executor.QueryRowContext(ctx, query, id)
	return r.scanPlayer(row)
}

func (r *postgresPlayerRepository) List(ctx context.Context, exec SQLExecutor, filter PlayerFilter) ([]*models.Player, error) {
	executor := r.getExecutor(exec)

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		SELECT` + playerColumns + `
		FROM players p
		JOIN teams t ON p.team_abbr = t.abbreviation`)

	args := make([]interface{}, 0)
	conditions := make([]string, 0)
	argID := 1

	if filter.QualifiedForRound != nil {
		queryBuilder.WriteString(`
		JOIN qualified_teams qt ON qt.team_abbr = p.team_abbr AND qt.round_number = $` + strconv.Itoa(argID))
		args = append(args, *filter.QualifiedForRound)
		argID++
	}
	if filter.TeamAbbr != nil {
		conditions = append(conditions, "p.team_abbr = $"+strconv.Itoa(argID))
		args = append(args, *filter.TeamAbbr)
		argID++
	}
	if filter.Position != nil {
		conditions = append(conditions, "p.position = $"+strconv.Itoa(argID))
		args = append(args, *filter.Position)
		argID++
	}
	if filter.Active != nil {
		conditions = append(conditions, "p.active = $"+strconv.Itoa(argID))
		args = append(args, *filter.Active)
		argID++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY p.cost DESC, p.full_name ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, errScan := r.scanPlayer(rows)
		if errScan != nil {
			return nil, errScan
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) ListActive(ctx context.Context, exec SQLExecutor) ([]*models.Player, error) {
	active := true
	return r.List(ctx, exec, PlayerFilter{Active: &active})
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	executor := r.getExecutor(exec)
	query := `
		SELECT` + playerColumns + `
		FROM players p
		JOIN teams t ON p.team_abbr = t.abbreviation
		WHERE p.id = ANY($1)`
	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list players by ids: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0, len(ids))
	for rows.Next() {
		p, errScan := r.scanPlayer(rows)
		if errScan != nil {
			return nil, errScan
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE players
		SET full_name = $1, team_abbr = $2, position = $3, cost = $4, active = $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		player.FullName, player.TeamAbbr, player.Position, player.Cost, player.Active, player.ID,
	)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func handlePlayerError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "players_external_id_key" {
				return ErrPlayerExternalIDConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "players_team_abbr_fkey" {
				return ErrPlayerTeamInvalid
			}
		}
	}
	return err
}
