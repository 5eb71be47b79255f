package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
	"github.com/Dosada05/playoff-pool/statsfeed"
	"github.com/Dosada05/playoff-pool/storage"
)

// Hand-rolled fakes for the service tests. Fields configure canned results
// and record calls; the sync fakes are mutex-guarded because the worker
// pool hits them concurrently.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePlayerRepo struct {
	mu            sync.Mutex
	active        []*models.Player
	byID          map[int]*models.Player
	listActiveErr error
	listResult    []*models.Player
	listErr       error
	lastFilter    repositories.PlayerFilter
	createErr     error
	created       []*models.Player
	updateErr     error
	updated       []*models.Player
}

func (f *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if f.createErr != nil {
		return f.createErr
	}
	player.ID = 500 + len(f.created)
	f.created = append(f.created, player)
	return nil
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	player, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return player, nil
}

func (f *fakePlayerRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter repositories.PlayerFilter) ([]*models.Player, error) {
	f.mu.Lock()
	f.lastFilter = filter
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakePlayerRepo) ListActive(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Player, error) {
	if f.listActiveErr != nil {
		return nil, f.listActiveErr
	}
	return f.active, nil
}

func (f *fakePlayerRepo) ListByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]*models.Player, error) {
	var players []*models.Player
	for _, id := range ids {
		if player, ok := f.byID[id]; ok {
			players = append(players, player)
		}
	}
	return players, nil
}

func (f *fakePlayerRepo) Update(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, player)
	return nil
}

type fakeStatsRepo struct {
	mu        sync.Mutex
	upserts   []models.StatSnapshot
	upsertErr error
	byPlayer  map[int][]*models.StatSnapshot
}

func (f *fakeStatsRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, snapshot *models.StatSnapshot) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, *snapshot)
	return nil
}

func (f *fakeStatsRepo) GetByPlayerAndRound(ctx context.Context, exec repositories.SQLExecutor, playerID, round int) (*models.StatSnapshot, error) {
	for _, snapshot := range f.byPlayer[playerID] {
		if snapshot.Round == round {
			return snapshot, nil
		}
	}
	return nil, repositories.ErrStatSnapshotNotFound
}

func (f *fakeStatsRepo) ListByPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID int) ([]*models.StatSnapshot, error) {
	return f.byPlayer[playerID], nil
}

// snapshotFor returns the recorded upsert for one (player, round) pair.
func (f *fakeStatsRepo) snapshotFor(playerID, round int) *models.StatSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.upserts {
		if f.upserts[i].PlayerID == playerID && f.upserts[i].Round == round {
			return &f.upserts[i]
		}
	}
	return nil
}

type elimination struct {
	abbr  string
	round int
}

type fakeTeamRepo struct {
	byAbbr     map[string]*models.Team
	list       []*models.Team
	listErr    error
	createErr  error
	created    []*models.Team
	eliminated []elimination
	markErr    error
}

func (f *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, team)
	return nil
}

func (f *fakeTeamRepo) GetByAbbreviation(ctx context.Context, exec repositories.SQLExecutor, abbr string) (*models.Team, error) {
	if team, ok := f.byAbbr[abbr]; ok {
		return team, nil
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *fakeTeamRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Team, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeTeamRepo) MarkEliminated(ctx context.Context, exec repositories.SQLExecutor, abbr string, round int) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.eliminated = append(f.eliminated, elimination{abbr: abbr, round: round})
	return nil
}

type fakeSyncLogRepo struct {
	createErr error
	finishErr error
	latest    *models.SyncLog
	latestErr error
	list      []*models.SyncLog
	listErr   error
	lastLimit int
	pruneKeys []string
	pruneErr  error
	lastKeep  int

	created  *models.SyncLog
	finished *models.SyncLog
}

func (f *fakeSyncLogRepo) Create(ctx context.Context, exec repositories.SQLExecutor, log *models.SyncLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	log.ID = 1
	log.Status = models.SyncStatusRunning
	f.created = log
	return nil
}

func (f *fakeSyncLogRepo) Finish(ctx context.Context, exec repositories.SQLExecutor, log *models.SyncLog) error {
	if f.finishErr != nil {
		return f.finishErr
	}
	finished := *log
	f.finished = &finished
	return nil
}

func (f *fakeSyncLogRepo) GetLatest(ctx context.Context, exec repositories.SQLExecutor) (*models.SyncLog, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeSyncLogRepo) List(ctx context.Context, exec repositories.SQLExecutor, limit int) ([]*models.SyncLog, error) {
	f.lastLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeSyncLogRepo) Prune(ctx context.Context, exec repositories.SQLExecutor, keep int) ([]string, error) {
	f.lastKeep = keep
	if f.pruneErr != nil {
		return nil, f.pruneErr
	}
	return f.pruneKeys, nil
}

type fakeSettingsService struct {
	currentRound  int
	lastSync      *time.Time
	statsVerified bool
	rounds        []*models.Round

	touched  []time.Time
	touchErr error
}

func (f *fakeSettingsService) CurrentRound(ctx context.Context) (int, error) {
	return f.currentRound, nil
}

func (f *fakeSettingsService) SetCurrentRound(ctx context.Context, round int) error {
	f.currentRound = round
	return nil
}

func (f *fakeSettingsService) LastSync(ctx context.Context) (*time.Time, error) {
	return f.lastSync, nil
}

func (f *fakeSettingsService) TouchLastSync(ctx context.Context, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, at)
	return nil
}

func (f *fakeSettingsService) StatsVerified(ctx context.Context) (bool, error) {
	return f.statsVerified, nil
}

func (f *fakeSettingsService) SetStatsVerified(ctx context.Context, verified bool) error {
	f.statsVerified = verified
	return nil
}

func (f *fakeSettingsService) Rounds(ctx context.Context) ([]*models.Round, error) {
	return f.rounds, nil
}

func (f *fakeSettingsService) LockDates(ctx context.Context) (map[int]*time.Time, error) {
	return nil, nil
}

func (f *fakeSettingsService) SetLockDate(ctx context.Context, round int, lockDate time.Time) error {
	return nil
}

type fakeFeed struct {
	mu          sync.Mutex
	gameLogs    map[string][]statsfeed.GameLog
	gameLogErrs map[string]error
	fetched     []string

	bracket    []statsfeed.SeriesResult
	bracketErr error
}

func (f *fakeFeed) GameLog(ctx context.Context, playerExternalID string) ([]statsfeed.GameLog, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, playerExternalID)
	f.mu.Unlock()
	if err := f.gameLogErrs[playerExternalID]; err != nil {
		return nil, err
	}
	return f.gameLogs[playerExternalID], nil
}

func (f *fakeFeed) PlayoffBracket(ctx context.Context) ([]statsfeed.SeriesResult, error) {
	if f.bracketErr != nil {
		return nil, f.bracketErr
	}
	return f.bracket, nil
}

type fakeUploader struct {
	mu        sync.Mutex
	keys      []string
	deleted   []string
	uploadErr error
	baseURL   string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	return &storage.UploadResult{Key: key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	if f.baseURL == "" {
		return ""
	}
	return f.baseURL + "/" + key
}

type fakeRosterRepo struct {
	roster    *models.Roster
	getErr    error
	createErr error
	created   []*models.Roster

	replaced   map[int][]*models.RosterSelection
	replaceErr error

	selections []models.RosterSelection
	listErr    error

	submittedIDs []int
	markErr      error

	scoringSelections []repositories.ScoringSelection
	scoringErr        error
}

func (f *fakeRosterRepo) Create(ctx context.Context, exec repositories.SQLExecutor, roster *models.Roster) error {
	if f.createErr != nil {
		return f.createErr
	}
	roster.ID = 100 + len(f.created)
	roster.CreatedAt = time.Now()
	f.created = append(f.created, roster)
	return nil
}

func (f *fakeRosterRepo) GetByUserAndRound(ctx context.Context, exec repositories.SQLExecutor, userID, round int) (*models.Roster, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.roster == nil {
		return nil, repositories.ErrRosterNotFound
	}
	return f.roster, nil
}

func (f *fakeRosterRepo) ReplaceSelections(ctx context.Context, exec repositories.SQLExecutor, rosterID int, selections []*models.RosterSelection) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	if f.replaced == nil {
		f.replaced = make(map[int][]*models.RosterSelection)
	}
	f.replaced[rosterID] = selections
	return nil
}

func (f *fakeRosterRepo) ListSelections(ctx context.Context, exec repositories.SQLExecutor, rosterID int) ([]models.RosterSelection, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.selections, nil
}

func (f *fakeRosterRepo) MarkSubmitted(ctx context.Context, exec repositories.SQLExecutor, rosterID int, submittedAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.submittedIDs = append(f.submittedIDs, rosterID)
	return nil
}

func (f *fakeRosterRepo) ListScoringSelections(ctx context.Context, exec repositories.SQLExecutor) ([]repositories.ScoringSelection, error) {
	if f.scoringErr != nil {
		return nil, f.scoringErr
	}
	return f.scoringSelections, nil
}

type fakeRoundRepo struct {
	rounds  map[int]*models.Round
	list    []*models.Round
	listErr error

	lockDates   map[int]time.Time
	setLockErr  error
	upsertCalls int
}

func (f *fakeRoundRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	f.upsertCalls++
	return nil
}

func (f *fakeRoundRepo) GetByNumber(ctx context.Context, exec repositories.SQLExecutor, number int) (*models.Round, error) {
	round, ok := f.rounds[number]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	return round, nil
}

func (f *fakeRoundRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Round, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeRoundRepo) SetLockDate(ctx context.Context, exec repositories.SQLExecutor, number int, lockDate time.Time) error {
	if f.setLockErr != nil {
		return f.setLockErr
	}
	if _, ok := f.rounds[number]; !ok {
		return repositories.ErrRoundNotFound
	}
	if f.lockDates == nil {
		f.lockDates = make(map[int]time.Time)
	}
	f.lockDates[number] = lockDate
	return nil
}

type replaceCall struct {
	round int
	teams []string
}

type fakeQualificationRepo struct {
	qualified map[string]bool
	mapErr    error

	replaceCalls []replaceCall
	replaceErr   error
}

func (f *fakeQualificationRepo) ReplaceForRound(ctx context.Context, exec repositories.SQLExecutor, round int, teamAbbrs []string) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaceCalls = append(f.replaceCalls, replaceCall{round: round, teams: teamAbbrs})
	return nil
}

func (f *fakeQualificationRepo) MapForRound(ctx context.Context, exec repositories.SQLExecutor, round int) (map[string]bool, error) {
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	return f.qualified, nil
}

type fakeTiebreakerRepo struct {
	tiebreaker *models.Tiebreaker
	getErr     error
	upserts    []*models.Tiebreaker
	upsertErr  error
}

func (f *fakeTiebreakerRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, tiebreaker *models.Tiebreaker) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, tiebreaker)
	return nil
}

func (f *fakeTiebreakerRepo) GetByUserAndRound(ctx context.Context, exec repositories.SQLExecutor, userID, round int) (*models.Tiebreaker, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.tiebreaker == nil {
		return nil, repositories.ErrTiebreakerNotFound
	}
	return f.tiebreaker, nil
}

type verifyCall struct {
	id       int
	verified bool
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[int]*models.User

	createErr error
	created   *models.User
	// createdHash snapshots the password hash at Create time; the service
	// blanks it on the shared struct before returning.
	createdHash string

	verified        []models.User
	listVerifiedErr error

	verifyCalls  []verifyCall
	setVerifyErr error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = 1
	user.CreatedAt = time.Now()
	f.created = user
	f.createdHash = user.PasswordHash
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) ListVerified(ctx context.Context) ([]models.User, error) {
	if f.listVerifiedErr != nil {
		return nil, f.listVerifiedErr
	}
	return f.verified, nil
}

func (f *fakeUserRepo) SetVerified(ctx context.Context, id int, verified bool) error {
	if f.setVerifyErr != nil {
		return f.setVerifyErr
	}
	f.verifyCalls = append(f.verifyCalls, verifyCall{id: id, verified: verified})
	return nil
}

type fakeSettingsRepo struct {
	values map[string]any
	getErr error
	setErr error
}

func (f *fakeSettingsRepo) Get(ctx context.Context, exec repositories.SQLExecutor, key string, dest any) error {
	if f.getErr != nil {
		return f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return repositories.ErrSettingNotFound
	}
	switch d := dest.(type) {
	case *int:
		*d = value.(int)
	case *bool:
		*d = value.(bool)
	case *time.Time:
		*d = value.(time.Time)
	default:
		return fmt.Errorf("unsupported destination type %T", dest)
	}
	return nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, exec repositories.SQLExecutor, key string, value any) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = make(map[string]any)
	}
	f.values[key] = value
	return nil
}
