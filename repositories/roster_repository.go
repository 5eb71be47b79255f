package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/lib/pq"
)

var (
	ErrRosterNotFound         = errors.New("roster not found")
	ErrRosterConflict         = errors.New("roster already exists for this user and round")
	ErrRosterUserInvalid      = errors.New("roster user conflict or invalid")
	ErrRosterRoundInvalid     = errors.New("roster round conflict or invalid")
	ErrSelectionPlayerInvalid = errors.New("selection player conflict or invalid")
	ErrSelectionDuplicate     = errors.New("player selected more than once")
)

// ScoringSelection is one submitted pick joined with its round snapshot,
// the row shape the leaderboard is computed from. Snapshot is nil when the
// player has not appeared in the round yet.
type ScoringSelection struct {
	UserID   int
	Round    int
	Star     bool
	Position models.PlayerPosition
	Snapshot *models.StatSnapshot
}

type RosterRepository interface {
	Create(ctx context.Context, exec SQLExecutor, roster *models.Roster) error
	GetByUserAndRound(ctx context.Context, exec SQLExecutor, userID, round int) (*models.Roster, error)
	ReplaceSelections(ctx context.Context, exec SQLExecutor, rosterID int, selections []*models.RosterSelection) error
	ListSelections(ctx context.Context, exec SQLExecutor, rosterID int) ([]models.RosterSelection, error)
	MarkSubmitted(ctx context.Context, exec SQLExecutor, rosterID int, submittedAt time.Time) error
	ListScoringSelections(ctx context.Context, exec SQLExecutor) ([]ScoringSelection, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) Create(ctx context.Context, exec SQLExecutor, roster *models.Roster) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rosters (user_id, round_number)
		VALUES ($1, $2)
		RETURNING id, submitted, created_at`
	err := executor.QueryRowContext(ctx, query, roster.UserID, roster.RoundNumber).
		Scan(&roster.ID, &roster.Submitted, &roster.CreatedAt)
	if err != nil {
		return handleRosterError(err)
	}
	return nil
}

func (r *postgresRosterRepository) GetByUserAndRound(ctx context.Context, exec SQLExecutor, userID, round int) (*models.Roster, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, user_id, round_number, submitted, submitted_at, created_at
		FROM rosters
		WHERE user_id = $1 AND round_number = $2`
	var roster models.Roster
	err := executor.QueryRowContext(ctx, query, userID, round).Scan(
		&roster.ID, &roster.UserID, &roster.RoundNumber,
		&roster.Submitted, &roster.SubmittedAt, &roster.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRosterNotFound
		}
		return nil, err
	}
	return &roster, nil
}

// ReplaceSelections deletes the roster's prior selection set and inserts
// the new one. Callers run it inside the save transaction so a half
// replaced roster is never visible.
func (r *postgresRosterRepository) ReplaceSelections(ctx context.Context, exec SQLExecutor, rosterID int, selections []*models.RosterSelection) (err error) {
	executor := r.getExecutor(exec)

	tx, isExternalTx := executor.(*sql.Tx)
	if !isExternalTx {
		tx, err = r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("ReplaceSelections failed to begin transaction: %w", err)
		}
		defer func() {
			if p := recover(); p != nil {
				tx.Rollback()
				panic(p)
			} else if err != nil {
				tx.Rollback()
			} else {
				err = tx.Commit()
			}
		}()
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM roster_selections WHERE roster_id = $1`, rosterID); err != nil {
		return fmt.Errorf("failed to clear selections for roster %d: %w", rosterID, err)
	}
	if len(selections) == 0 {
		return err
	}

	var stmt *sql.Stmt
	stmt, err = tx.PrepareContext(ctx, `
		INSERT INTO roster_selections (roster_id, player_id, star)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("ReplaceSelections failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, selection := range selections {
		selection.RosterID = rosterID
		_, err = stmt.ExecContext(ctx, rosterID, selection.PlayerID, selection.Star)
		if err != nil {
			err = handleRosterError(err)
			return err
		}
	}
	return err
}

func (r *postgresRosterRepository) ListSelections(ctx context.Context, exec SQLExecutor, rosterID int) ([]models.RosterSelection, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT rs.id, rs.roster_id, rs.player_id, rs.star,
		       p.id, p.external_id, p.full_name, p.team_abbr, p.position, p.cost, p.active, p.created_at,
		       t.abbreviation, t.name, t.conference, t.eliminated, t.elimination_round
		FROM roster_selections rs
		JOIN players p ON p.id = rs.player_id
		JOIN teams t ON t.abbreviation = p.team_abbr
		WHERE rs.roster_id = $1
		ORDER BY t.conference ASC, p.position ASC, p.cost DESC`
	rows, err := executor.QueryContext(ctx, query, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections for roster %d: %w", rosterID, err)
	}
	defer rows.Close()

	selections := make([]models.RosterSelection, 0)
	for rows.Next() {
		var sel models.RosterSelection
		var p models.Player
		var t models.Team
		if err := rows.Scan(
			&sel.ID, &sel.RosterID, &sel.PlayerID, &sel.Star,
			&p.ID, &p.ExternalID, &p.FullName, &p.TeamAbbr, &p.Position, &p.Cost, &p.Active, &p.CreatedAt,
			&t.Abbreviation, &t.Name, &t.Conference, &t.Eliminated, &t.EliminationRound,
		); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		p.Team = &t
		sel.Player = &p
		selections = append(selections, sel)
	}
	return selections, rows.Err()
}

func (r *postgresRosterRepository) MarkSubmitted(ctx context.Context, exec SQLExecutor, rosterID int, submittedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE rosters
		SET submitted = TRUE, submitted_at = $1
		WHERE id = $2 AND submitted = FALSE`
	result, err := executor.ExecContext(ctx, query, submittedAt, rosterID)
	if err != nil {
		return fmt.Errorf("failed to mark roster %d submitted: %w", rosterID, err)
	}
	return checkAffectedRows(result, ErrRosterNotFound)
}

// ListScoringSelections returns every selection of every submitted roster
// LEFT JOINed with its (player, round) snapshot. Read-only and untransacted:
// a sync overwriting snapshots mid-read just means a slightly stale row,
// which the leaderboard tolerates.
func (r *postgresRosterRepository) ListScoringSelections(ctx context.Context, exec SQLExecutor) ([]ScoringSelection, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ro.user_id, ro.round_number, rs.star, p.position,
		       s.goals, s.assists, s.wins, s.shutouts, s.games_played
		FROM rosters ro
		JOIN roster_selections rs ON rs.roster_id = ro.id
		JOIN players p ON p.id = rs.player_id
		LEFT JOIN stat_snapshots s ON s.player_id = rs.player_id AND s.round = ro.round_number
		WHERE ro.submitted = TRUE`
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scoring selections: %w", err)
	}
	defer rows.Close()

	selections := make([]ScoringSelection, 0)
	for rows.Next() {
		var sel ScoringSelection
		var goals, assists, wins, shutouts, gamesPlayed sql.NullInt64
		if err := rows.Scan(
			&sel.UserID, &sel.Round, &sel.Star, &sel.Position,
			&goals, &assists, &wins, &shutouts, &gamesPlayed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scoring selection: %w", err)
		}
		if goals.Valid {
			sel.Snapshot = &models.StatSnapshot{
				Round:       sel.Round,
				Goals:       int(goals.Int64),
				Assists:     int(assists.Int64),
				Wins:        int(wins.Int64),
				Shutouts:    int(shutouts.Int64),
				GamesPlayed: int(gamesPlayed.Int64),
			}
		}
		selections = append(selections, sel)
	}
	return selections, rows.Err()
}

func handleRosterError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			switch pqErr.Constraint {
			case "rosters_user_id_round_number_key":
				return ErrRosterConflict
			case "roster_selections_roster_id_player_id_key":
				return ErrSelectionDuplicate
			}
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "rosters_user_id_fkey":
				return ErrRosterUserInvalid
			case "rosters_round_number_fkey":
				return ErrRosterRoundInvalid
			case "roster_selections_player_id_fkey":
				return ErrSelectionPlayerInvalid
			}
		}
	}
	return err
}
