package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
	"github.com/Dosada05/playoff-pool/statsfeed"
	"github.com/Dosada05/playoff-pool/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	players  *fakePlayerRepo
	stats    *fakeStatsRepo
	teams    *fakeTeamRepo
	syncLogs *fakeSyncLogRepo
	settings *fakeSettingsService
	feed     *fakeFeed
	uploader storage.Uploader
}

func newSyncFixture() *syncFixture {
	return &syncFixture{
		players:  &fakePlayerRepo{},
		stats:    &fakeStatsRepo{},
		teams:    &fakeTeamRepo{},
		syncLogs: &fakeSyncLogRepo{},
		settings: &fakeSettingsService{},
		feed:     &fakeFeed{gameLogs: map[string][]statsfeed.GameLog{}, gameLogErrs: map[string]error{}},
	}
}

func (f *syncFixture) service(workers int) SyncService {
	return NewSyncService(
		f.players, f.stats, f.teams, f.syncLogs, f.settings,
		f.feed, statsfeed.NewPacer(0), f.uploader, workers, testLogger(),
	)
}

func skater(id int, externalID, name string) *models.Player {
	return &models.Player{ID: id, ExternalID: externalID, FullName: name, Position: models.PositionForward, Active: true}
}

func TestRunSyncWritesSnapshots(t *testing.T) {
	f := newSyncFixture()
	f.players.active = []*models.Player{
		skater(1, "8478402", "Connor McDavid"),
		{ID: 2, ExternalID: "8477424", FullName: "Juuse Saros", Position: models.PositionGoaltender, Active: true},
	}
	f.feed.gameLogs["8478402"] = []statsfeed.GameLog{
		{GameID: "2024031101", Goals: 2, Assists: 1},
		{GameID: "2024032101", Goals: 1},
	}
	f.feed.gameLogs["8477424"] = []statsfeed.GameLog{
		{GameID: "2024031101", Decision: statsfeed.DecisionWin, GoalsAgainst: 0},
	}

	summary, err := f.service(1).RunSync(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.PlayersUpdated)
	assert.Empty(t, summary.Errors)

	// Every synced player gets all three round snapshots overwritten.
	require.Len(t, f.stats.upserts, 6)

	first := f.stats.snapshotFor(1, 1)
	require.NotNil(t, first)
	assert.Equal(t, 2, first.Goals)
	assert.Equal(t, 1, first.Assists)
	assert.Equal(t, 1, first.GamesPlayed)

	second := f.stats.snapshotFor(1, 2)
	require.NotNil(t, second)
	assert.Equal(t, 1, second.Goals)

	third := f.stats.snapshotFor(1, 3)
	require.NotNil(t, third)
	assert.Equal(t, 0, third.GamesPlayed)

	goalie := f.stats.snapshotFor(2, 1)
	require.NotNil(t, goalie)
	assert.Equal(t, 1, goalie.Wins)
	assert.Equal(t, 1, goalie.Shutouts)

	require.NotNil(t, f.syncLogs.finished)
	assert.Equal(t, models.SyncStatusCompleted, f.syncLogs.finished.Status)
	assert.Equal(t, 2, f.syncLogs.finished.PlayersUpdated)
	assert.Len(t, f.settings.touched, 1)
}

func TestRunSyncTwiceWritesIdenticalSnapshots(t *testing.T) {
	f := newSyncFixture()
	f.players.active = []*models.Player{skater(1, "8478402", "Connor McDavid")}
	f.feed.gameLogs["8478402"] = []statsfeed.GameLog{
		{GameID: "2024031101", Goals: 2, Assists: 1},
		{GameID: "2024032101", Goals: 1},
	}
	svc := f.service(1)

	_, err := svc.RunSync(context.Background())
	require.NoError(t, err)
	_, err = svc.RunSync(context.Background())
	require.NoError(t, err)

	// Snapshots are full overwrites, so a re-run with an unchanged feed
	// writes exactly the same rows again.
	require.Len(t, f.stats.upserts, 6)
	assert.Equal(t, f.stats.upserts[:3], f.stats.upserts[3:])
}

func TestRunSyncSkipsPlayersWithoutGames(t *testing.T) {
	f := newSyncFixture()
	f.players.active = []*models.Player{skater(1, "8478402", "Connor McDavid")}

	summary, err := f.service(1).RunSync(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 0, summary.PlayersUpdated)
	assert.Empty(t, summary.Errors)
	assert.Empty(t, f.stats.upserts)
}

func TestRunSyncCollectsPlayerErrors(t *testing.T) {
	f := newSyncFixture()
	f.players.active = []*models.Player{
		skater(1, "8478402", "Connor McDavid"),
		skater(2, "8479318", "Matthew Tkachuk"),
	}
	f.feed.gameLogs["8478402"] = []statsfeed.GameLog{{GameID: "2024031101", Goals: 1}}
	f.feed.gameLogErrs["8479318"] = errors.New("feed timeout")

	summary, err := f.service(1).RunSync(context.Background())

	// One player failing does not fail the run.
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.PlayersUpdated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "Matthew Tkachuk")
	assert.Contains(t, summary.Errors[0], "feed timeout")

	require.NotNil(t, f.syncLogs.finished)
	assert.Equal(t, models.SyncStatusCompleted, f.syncLogs.finished.Status)
	assert.Equal(t, summary.Errors, f.syncLogs.finished.Errors)
}

func TestRunSyncWorkerPoolCoversAllPlayers(t *testing.T) {
	f := newSyncFixture()
	for i := 1; i <= 8; i++ {
		externalID := fmt.Sprintf("84%03d", i)
		f.players.active = append(f.players.active, skater(i, externalID, fmt.Sprintf("Player %d", i)))
		f.feed.gameLogs[externalID] = []statsfeed.GameLog{{GameID: "2024031101", Goals: i}}
	}

	summary, err := f.service(4).RunSync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8, summary.PlayersUpdated)
	assert.Len(t, f.feed.fetched, 8)
	assert.Len(t, f.stats.upserts, 24)
}

func TestRunSyncListActiveFailure(t *testing.T) {
	f := newSyncFixture()
	f.players.listActiveErr = errors.New("db down")

	summary, err := f.service(1).RunSync(context.Background())

	require.Error(t, err)
	assert.Nil(t, summary)
	require.NotNil(t, f.syncLogs.finished)
	assert.Equal(t, models.SyncStatusFailed, f.syncLogs.finished.Status)
	require.Len(t, f.syncLogs.finished.Errors, 1)
	assert.Contains(t, f.syncLogs.finished.Errors[0], "db down")
}

func TestRunSyncLogCreateFailure(t *testing.T) {
	f := newSyncFixture()
	f.syncLogs.createErr = errors.New("insert failed")

	summary, err := f.service(1).RunSync(context.Background())

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, f.feed.fetched)
}

func TestRunSyncRejectsConcurrentRun(t *testing.T) {
	f := newSyncFixture()
	svc := f.service(1)

	impl := svc.(*syncService)
	impl.mu.Lock()
	defer impl.mu.Unlock()

	summary, err := svc.RunSync(context.Background())

	assert.ErrorIs(t, err, ErrSyncAlreadyRunning)
	assert.Nil(t, summary)
}

func TestRunSyncAppliesEliminations(t *testing.T) {
	f := newSyncFixture()
	f.feed.bracket = []statsfeed.SeriesResult{
		{Round: 1, Winner: "DAL", Loser: "VGK"},
		{Round: 1, Winner: "", Loser: ""},
		{Round: 2, Winner: "EDM", Loser: "DAL"},
	}

	summary, err := f.service(1).RunSync(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, []elimination{
		{abbr: "VGK", round: 1},
		{abbr: "DAL", round: 2},
	}, f.teams.eliminated)
}

func TestRunSyncBracketFailureDoesNotFailRun(t *testing.T) {
	f := newSyncFixture()
	f.feed.bracketErr = errors.New("bracket unavailable")

	summary, err := f.service(1).RunSync(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Empty(t, f.teams.eliminated)
}

func TestRunSyncArchivesReport(t *testing.T) {
	f := newSyncFixture()
	up := &fakeUploader{}
	f.uploader = up

	summary, err := f.service(1).RunSync(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Success)
	require.Len(t, up.keys, 1)
	assert.Contains(t, up.keys[0], "sync-reports/")
	assert.Contains(t, up.keys[0], ".json")

	require.NotNil(t, f.syncLogs.finished)
	require.NotNil(t, f.syncLogs.finished.ReportKey)
	assert.Equal(t, up.keys[0], *f.syncLogs.finished.ReportKey)
}

func TestRunSyncArchiveFailureDoesNotFailRun(t *testing.T) {
	f := newSyncFixture()
	f.uploader = &fakeUploader{uploadErr: errors.New("bucket gone")}

	summary, err := f.service(1).RunSync(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Success)
	require.NotNil(t, f.syncLogs.finished)
	assert.Nil(t, f.syncLogs.finished.ReportKey)
}

func TestRunSyncPrunesOldReports(t *testing.T) {
	f := newSyncFixture()
	up := &fakeUploader{}
	f.uploader = up
	f.syncLogs.pruneKeys = []string{"sync-reports/old-1.json", "sync-reports/old-2.json"}

	_, err := f.service(1).RunSync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, syncRunRetention, f.syncLogs.lastKeep)
	assert.Equal(t, f.syncLogs.pruneKeys, up.deleted)
}

func TestLatestRun(t *testing.T) {
	f := newSyncFixture()
	up := &fakeUploader{baseURL: "https://reports.example.com"}
	f.uploader = up

	key := "sync-reports/abc.json"
	f.syncLogs.latest = &models.SyncLog{ID: 7, Status: models.SyncStatusCompleted, ReportKey: &key}

	run, err := f.service(1).LatestRun(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, run.ID)
	require.NotNil(t, run.ReportURL)
	assert.Equal(t, "https://reports.example.com/sync-reports/abc.json", *run.ReportURL)
}

func TestLatestRunNotFound(t *testing.T) {
	f := newSyncFixture()
	f.syncLogs.latestErr = repositories.ErrSyncLogNotFound

	_, err := f.service(1).LatestRun(context.Background())

	assert.ErrorIs(t, err, ErrSyncLogNotFound)
}

func TestListRuns(t *testing.T) {
	f := newSyncFixture()
	f.syncLogs.list = []*models.SyncLog{
		{ID: 2, Status: models.SyncStatusCompleted},
		{ID: 1, Status: models.SyncStatusFailed},
	}

	runs, err := f.service(1).ListRuns(context.Background(), 20)

	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, 20, f.syncLogs.lastLimit)
}

func TestRunSyncRecordsUnknownGameIDs(t *testing.T) {
	f := newSyncFixture()
	f.players.active = []*models.Player{skater(1, "8478402", "Connor McDavid")}
	f.feed.gameLogs["8478402"] = []statsfeed.GameLog{
		{GameID: "2024039901", Goals: 1},
	}

	summary, err := f.service(1).RunSync(context.Background())

	// Unknown identifiers land in the default round instead of vanishing.
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PlayersUpdated)
	snapshot := f.stats.snapshotFor(1, models.FirstRound)
	require.NotNil(t, snapshot)
	assert.Equal(t, 1, snapshot.Goals)
	assert.Equal(t, 1, snapshot.GamesPlayed)
}
