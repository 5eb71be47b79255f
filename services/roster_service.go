package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
)

// SalaryCap is the fixed roster budget in cost units.
const SalaryCap = 30

// Composition required at submission, per conference.
const (
	forwardsPerConference    = 3
	defensemenPerConference  = 2
	goaltendersPerConference = 1
	starsRequired            = 3
)

type RosterSelectionInput struct {
	PlayerID int  `json:"player_id"`
	Star     bool `json:"star"`
}

type SaveRosterInput struct {
	Selections        []RosterSelectionInput `json:"selections"`
	TiebreakerAnswers []int64                `json:"tiebreaker_answers,omitempty"`
}

type RosterService interface {
	GetRoster(ctx context.Context, userID, round int) (*models.Roster, error)
	SaveRoster(ctx context.Context, userID, round int, input SaveRosterInput) (*models.Roster, error)
	SubmitRoster(ctx context.Context, userID, round int) (*models.Roster, error)
}

type rosterService struct {
	db             *sql.DB
	rosterRepo     repositories.RosterRepository
	playerRepo     repositories.PlayerRepository
	roundRepo      repositories.RoundRepository
	qualRepo       repositories.QualificationRepository
	tiebreakerRepo repositories.TiebreakerRepository
	logger         *slog.Logger
}

func NewRosterService(
	db *sql.DB,
	rosterRepo repositories.RosterRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	qualRepo repositories.QualificationRepository,
	tiebreakerRepo repositories.TiebreakerRepository,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		db:             db,
		rosterRepo:     rosterRepo,
		playerRepo:     playerRepo,
		roundRepo:      roundRepo,
		qualRepo:       qualRepo,
		tiebreakerRepo: tiebreakerRepo,
		logger:         logger,
	}
}

// GetRoster returns the user's roster for the round with selections and
// tiebreaker answers attached.
func (s *rosterService) GetRoster(ctx context.Context, userID, round int) (*models.Roster, error) {
	if !models.ScoringRound(round) {
		return nil, ErrRoundInvalid
	}

	roster, err := s.rosterRepo.GetByUserAndRound(ctx, nil, userID, round)
	if err != nil {
		if errors.Is(err, repositories.ErrRosterNotFound) {
			return nil, ErrRosterNotFound
		}
		return nil, err
	}
	return s.populateRoster(ctx, roster)
}

// SaveRoster replaces the user's selection set for the round. Rejections are
// checked in a fixed order: invalid round, round without a deadline, locked
// round, submitted roster, salary cap, team qualification. The replace and
// the tiebreaker upsert commit as one transaction.
func (s *rosterService) SaveRoster(ctx context.Context, userID, round int, input SaveRosterInput) (*models.Roster, error) {
	if !models.ScoringRound(round) {
		return nil, ErrRoundInvalid
	}

	roundInfo, err := s.roundRepo.GetByNumber(ctx, nil, round)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if roundInfo.LockDate == nil {
		return nil, ErrRoundNotLockable
	}
	if roundInfo.Locked(time.Now()) {
		return nil, ErrRoundLocked
	}

	roster, err := s.rosterRepo.GetByUserAndRound(ctx, nil, userID, round)
	if err != nil && !errors.Is(err, repositories.ErrRosterNotFound) {
		return nil, err
	}
	if roster != nil && roster.Submitted {
		return nil, ErrRosterSubmitted
	}

	players, err := s.resolvePlayers(ctx, input.Selections)
	if err != nil {
		return nil, err
	}

	totalCost := 0
	for _, player := range players {
		totalCost += player.Cost
	}
	if totalCost > SalaryCap {
		return nil, fmt.Errorf("%w: %d of %d budget units", ErrSalaryCapExceeded, totalCost, SalaryCap)
	}

	qualified, err := s.qualRepo.MapForRound(ctx, nil, round)
	if err != nil {
		return nil, err
	}
	for _, player := range players {
		if !qualified[player.TeamAbbr] {
			return nil, fmt.Errorf("%w: %s (%s)", ErrTeamNotQualified, player.FullName, player.TeamAbbr)
		}
	}

	selections := make([]*models.RosterSelection, 0, len(input.Selections))
	for _, sel := range input.Selections {
		selections = append(selections, &models.RosterSelection{
			PlayerID: sel.PlayerID,
			Star:     sel.Star,
		})
	}

	roster, err = s.saveInTx(ctx, userID, round, roster, selections, input.TiebreakerAnswers)
	if err != nil {
		return nil, err
	}
	return s.populateRoster(ctx, roster)
}

// resolvePlayers loads the selected players and rejects unknown, inactive or
// duplicated picks.
func (s *rosterService) resolvePlayers(ctx context.Context, selections []RosterSelectionInput) ([]*models.Player, error) {
	ids := make([]int, 0, len(selections))
	seen := make(map[int]bool, len(selections))
	for _, sel := range selections {
		if seen[sel.PlayerID] {
			return nil, fmt.Errorf("%w: player %d selected more than once", ErrValidationFailed, sel.PlayerID)
		}
		seen[sel.PlayerID] = true
		ids = append(ids, sel.PlayerID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	players, err := s.playerRepo.ListByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Player, len(players))
	for _, player := range players {
		byID[player.ID] = player
	}

	resolved := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		player, ok := byID[id]
		if !ok || !player.Active {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerNotSelectable, id)
		}
		resolved = append(resolved, player)
	}
	return resolved, nil
}

// saveInTx creates the roster row when absent, replaces its selections and
// upserts the tiebreaker answers as one unit.
func (s *rosterService) saveInTx(ctx context.Context, userID, round int, roster *models.Roster, selections []*models.RosterSelection, answers []int64) (result *models.Roster, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin roster transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			result = nil
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("roster save rollback failed",
					slog.Any("error", rbErr),
					slog.Any("original_error", err),
				)
			}
		} else if err = tx.Commit(); err != nil {
			result = nil
		}
	}()

	if roster == nil {
		roster = &models.Roster{UserID: userID, RoundNumber: round}
		if err = s.rosterRepo.Create(ctx, tx, roster); err != nil {
			return nil, err
		}
	}

	if err = s.rosterRepo.ReplaceSelections(ctx, tx, roster.ID, selections); err != nil {
		return nil, err
	}

	if len(answers) > 0 {
		tiebreaker := &models.Tiebreaker{UserID: userID, RoundNumber: round, Answers: answers}
		if err = s.tiebreakerRepo.Upsert(ctx, tx, tiebreaker); err != nil {
			return nil, err
		}
	}
	return roster, nil
}

// SubmitRoster finalizes the user's roster for the round. The full
// composition and star rules apply only here; saves may hold partial picks.
// Submission is terminal.
func (s *rosterService) SubmitRoster(ctx context.Context, userID, round int) (*models.Roster, error) {
	if !models.ScoringRound(round) {
		return nil, ErrRoundInvalid
	}

	roundInfo, err := s.roundRepo.GetByNumber(ctx, nil, round)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if roundInfo.LockDate == nil {
		return nil, ErrRoundNotLockable
	}
	if roundInfo.Locked(time.Now()) {
		return nil, ErrRoundLocked
	}

	roster, err := s.rosterRepo.GetByUserAndRound(ctx, nil, userID, round)
	if err != nil {
		if errors.Is(err, repositories.ErrRosterNotFound) {
			return nil, ErrRosterNotFound
		}
		return nil, err
	}
	if roster.Submitted {
		return nil, ErrRosterSubmitted
	}

	selections, err := s.rosterRepo.ListSelections(ctx, nil, roster.ID)
	if err != nil {
		return nil, err
	}
	if err := validateComposition(selections); err != nil {
		return nil, err
	}
	if err := validateStars(selections); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.rosterRepo.MarkSubmitted(ctx, nil, roster.ID, now); err != nil {
		if errors.Is(err, repositories.ErrRosterNotFound) {
			return nil, ErrRosterSubmitted
		}
		return nil, err
	}
	roster.Submitted = true
	roster.SubmittedAt = &now
	roster.Selections = selections

	s.logger.Info("roster submitted",
		slog.Int("user_id", userID),
		slog.Int("round", round),
		slog.Int("roster_id", roster.ID),
	)
	return s.populateTiebreaker(ctx, roster)
}

// validateComposition requires exactly 3 forwards, 2 defensemen and 1
// goaltender from each conference, 12 players in total.
func validateComposition(selections []models.RosterSelection) error {
	rosterSize := 2 * (forwardsPerConference + defensemenPerConference + goaltendersPerConference)
	if len(selections) != rosterSize {
		return fmt.Errorf("%w: got %d of %d players", ErrRosterIncomplete, len(selections), rosterSize)
	}

	type slot struct {
		conference models.Conference
		position   models.PlayerPosition
	}
	counts := make(map[slot]int)
	for _, sel := range selections {
		if sel.Player == nil || sel.Player.Team == nil {
			return fmt.Errorf("selection %d is missing player details", sel.ID)
		}
		counts[slot{sel.Player.Team.Conference, sel.Player.Position}]++
	}

	for _, conference := range []models.Conference{models.ConferenceEast, models.ConferenceWest} {
		if counts[slot{conference, models.PositionForward}] != forwardsPerConference ||
			counts[slot{conference, models.PositionDefense}] != defensemenPerConference ||
			counts[slot{conference, models.PositionGoaltender}] != goaltendersPerConference {
			return ErrRosterIncomplete
		}
	}
	return nil
}

// validateStars requires exactly 3 starred selections, one forward, one
// defenseman and one goaltender.
func validateStars(selections []models.RosterSelection) error {
	starsByRole := make(map[models.PlayerPosition]int)
	total := 0
	for _, sel := range selections {
		if !sel.Star {
			continue
		}
		total++
		if sel.Player != nil {
			starsByRole[sel.Player.Position]++
		}
	}
	if total != starsRequired {
		return ErrStarsInvalid
	}
	for _, role := range []models.PlayerPosition{models.PositionForward, models.PositionDefense, models.PositionGoaltender} {
		if starsByRole[role] != 1 {
			return ErrStarsInvalid
		}
	}
	return nil
}

func (s *rosterService) populateRoster(ctx context.Context, roster *models.Roster) (*models.Roster, error) {
	selections, err := s.rosterRepo.ListSelections(ctx, nil, roster.ID)
	if err != nil {
		return nil, err
	}
	roster.Selections = selections
	return s.populateTiebreaker(ctx, roster)
}

func (s *rosterService) populateTiebreaker(ctx context.Context, roster *models.Roster) (*models.Roster, error) {
	tiebreaker, err := s.tiebreakerRepo.GetByUserAndRound(ctx, nil, roster.UserID, roster.RoundNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrTiebreakerNotFound) {
			return roster, nil
		}
		return nil, err
	}
	roster.Tiebreaker = tiebreaker
	return roster, nil
}
