package cleanup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/database"
	"site-cleaner/core/manifest"
	"site-cleaner/feature/cleanup/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	testRoot     = "/site/out"
	testManifest = "/work/manifest.txt"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

// setupSite writes a destination tree and a text manifest listing the next build.
func setupSite(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"index.html":         "home",
		"old.html":           "stale page",
		".git/config":        "[core]",
		"blog/post.html":     "post",
		"blog/drafts/x.html": "draft",
	}
	for rel, content := range files {
		p := filepath.Join(testRoot, rel)
		require.NoError(t, fsys.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0o644))
	}
	require.NoError(t, fsys.MkdirAll("/work", 0o755))
	require.NoError(t, afero.WriteFile(fsys, testManifest, []byte("index.html\nblog/post.html\n"), 0o644))
	return fsys
}

func newTestService(fsys afero.Fs, db *gorm.DB) *Service {
	cfg := cleaner.Config{
		Destination:  testRoot,
		KeepFiles:    ".git,.svn",
		Source:       "file",
		AllowedRoots: "/site",
	}
	sources := manifest.NewRegistry(manifest.NewFileSource(fsys, testManifest))
	return NewService(fsys, sources, nil, cfg, zap.NewNop(), db)
}

func TestService_Plan(t *testing.T) {
	fsys := setupSite(t)
	svc := newTestService(fsys, nil)

	result, err := svc.Plan(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, "file", result.Source)
	assert.True(t, result.DryRun)
	assert.Equal(t, []string{
		"/site/out/blog/drafts",
		"/site/out/blog/drafts/x.html",
		"/site/out/old.html",
	}, result.Plan.Paths())
	assert.Equal(t, []string{"/site/out/blog/drafts", "/site/out/old.html"}, result.Roots)
	assert.Equal(t, 1, result.Plan.Summary.Kept)

	exists, _ := afero.Exists(fsys, "/site/out/old.html")
	assert.True(t, exists, "planning must not remove anything")
}

func TestService_PlanKeepOverride(t *testing.T) {
	fsys := setupSite(t)
	svc := newTestService(fsys, nil)

	result, err := svc.Plan(context.Background(), Request{Keep: []string{}})
	require.NoError(t, err)
	assert.Contains(t, result.Plan.Paths(), "/site/out/.git")
	assert.Zero(t, result.Plan.Summary.Kept)
}

func TestService_Errors(t *testing.T) {
	fsys := setupSite(t)
	svc := newTestService(fsys, nil)
	ctx := context.Background()

	t.Run("UnknownSource", func(t *testing.T) {
		_, err := svc.Plan(ctx, Request{Source: "ftp"})
		assert.ErrorIs(t, err, manifest.ErrUnknownSource)
	})

	t.Run("NoDestination", func(t *testing.T) {
		svc := NewService(fsys, manifest.NewRegistry(manifest.NewFileSource(fsys, testManifest)), nil,
			cleaner.Config{Source: "file"}, zap.NewNop(), nil)
		_, err := svc.Apply(ctx, Request{})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("DestinationOutsideAllowedRoots", func(t *testing.T) {
		require.NoError(t, fsys.MkdirAll("/home/user", 0o755))
		require.NoError(t, afero.WriteFile(fsys, "/home/user/notes.txt", []byte("mine"), 0o644))

		for _, dest := range []string{"/home/user", "/", "/site/../home", "/sites"} {
			_, err := svc.Apply(ctx, Request{Destination: dest, Keep: []string{}})
			assert.ErrorIs(t, err, ErrInvalidRequest, dest)
		}
		ok, _ := afero.Exists(fsys, "/home/user/notes.txt")
		assert.True(t, ok)
	})

	t.Run("ManifestMissing", func(t *testing.T) {
		require.NoError(t, fsys.Remove(testManifest))
		_, err := svc.Plan(ctx, Request{})
		assert.ErrorContains(t, err, "failed to load site files from file")
	})
}

func TestService_Apply(t *testing.T) {
	fsys := setupSite(t)
	db, sqlMock := setupMockDB(t)
	svc := newTestService(fsys, db)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO `cleanup_runs`").WillReturnResult(sqlmock.NewResult(7, 1))
	sqlMock.ExpectCommit()

	result, err := svc.Apply(context.Background(), Request{Origin: "cli"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Removed)
	assert.Equal(t, uint(7), result.RunID)
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	for _, rel := range []string{"old.html", "blog/drafts"} {
		ok, _ := afero.Exists(fsys, filepath.Join(testRoot, rel))
		assert.False(t, ok, rel)
	}
	for _, rel := range []string{"index.html", "blog/post.html", ".git/config"} {
		ok, _ := afero.Exists(fsys, filepath.Join(testRoot, rel))
		assert.True(t, ok, rel)
	}
}

func TestService_ApplyDryRun(t *testing.T) {
	fsys := setupSite(t)
	svc := newTestService(fsys, nil)

	result, err := svc.Apply(context.Background(), Request{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Zero(t, result.Removed)
	assert.Len(t, result.Plan.Actions, 3)

	ok, _ := afero.Exists(fsys, "/site/out/old.html")
	assert.True(t, ok)
}

// failingRemoveFs fails RemoveAll for one path.
type failingRemoveFs struct {
	afero.Fs
	fail string
}

func (f *failingRemoveFs) RemoveAll(path string) error {
	if path == f.fail {
		return &os.PathError{Op: "unlinkat", Path: path, Err: os.ErrPermission}
	}
	return f.Fs.RemoveAll(path)
}

func TestService_ApplyDeletionFailureIsRecorded(t *testing.T) {
	fsys := &failingRemoveFs{Fs: setupSite(t), fail: "/site/out/old.html"}
	db, sqlMock := setupMockDB(t)
	svc := newTestService(fsys, db)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO `cleanup_runs`").WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	result, err := svc.Apply(context.Background(), Request{})

	var derr *cleaner.DeletionError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "/site/out/old.html", derr.Path)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, int64(len("draft")), result.Reclaimed)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_ApplyAllowedRoot(t *testing.T) {
	fsys := setupSite(t)
	require.NoError(t, fsys.MkdirAll("/site/preview", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/site/preview/stale.html", []byte("x"), 0o644))
	svc := newTestService(fsys, nil)

	result, err := svc.Apply(context.Background(), Request{Destination: "/site/preview/"})
	require.NoError(t, err)
	assert.Equal(t, "/site/preview", result.Plan.Root)
	assert.Equal(t, 1, result.Removed)
}

func TestService_ApplyPlan(t *testing.T) {
	fsys := setupSite(t)
	svc := newTestService(fsys, nil)
	ctx := context.Background()

	planned, err := svc.Plan(ctx, Request{})
	require.NoError(t, err)

	// The tree changes between confirmation and apply
	require.NoError(t, afero.WriteFile(fsys, "/site/out/appeared.html", []byte("new"), 0o644))

	result, err := svc.ApplyPlan(ctx, Request{}, planned.Plan)
	require.NoError(t, err)
	assert.Same(t, planned.Plan, result.Plan)
	assert.Equal(t, 3, result.Removed)
	assert.Equal(t, int64(len("stale page")+len("draft")), result.Reclaimed)

	ok, _ := afero.Exists(fsys, "/site/out/appeared.html")
	assert.True(t, ok, "paths outside the confirmed plan must survive")
	ok, _ = afero.Exists(fsys, "/site/out/old.html")
	assert.False(t, ok)
}

func TestService_ApplyPlanErrors(t *testing.T) {
	fsys := setupSite(t)
	svc := newTestService(fsys, nil)
	ctx := context.Background()

	t.Run("NilPlan", func(t *testing.T) {
		_, err := svc.ApplyPlan(ctx, Request{}, nil)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("OtherRoot", func(t *testing.T) {
		plan := &cleaner.Plan{
			Root:    "/site/elsewhere",
			Actions: []cleaner.Action{{Type: cleaner.ActionRemove, Path: "/site/out/index.html"}},
		}
		_, err := svc.ApplyPlan(ctx, Request{}, plan)
		assert.ErrorIs(t, err, ErrInvalidRequest)

		ok, _ := afero.Exists(fsys, "/site/out/index.html")
		assert.True(t, ok)
	})
}

func TestService_RecordFailureDoesNotFailApply(t *testing.T) {
	fsys := setupSite(t)
	db, sqlMock := setupMockDB(t)
	svc := newTestService(fsys, db)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO `cleanup_runs`").WillReturnError(errors.New("table is read only"))
	sqlMock.ExpectRollback()

	result, err := svc.Apply(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Removed)
	assert.Zero(t, result.RunID)
}

func TestService_History(t *testing.T) {
	t.Run("NoDatabase", func(t *testing.T) {
		_, err := newTestService(afero.NewMemMapFs(), nil).History(context.Background(), 5)
		assert.ErrorIs(t, err, ErrHistoryUnavailable)
	})

	t.Run("Query", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		svc := newTestService(afero.NewMemMapFs(), db)

		rows := sqlmock.NewRows([]string{"id", "destination", "outcome", "removed"}).
			AddRow(2, testRoot, "applied", 4).
			AddRow(1, testRoot, "dry_run", 0)
		sqlMock.ExpectQuery("SELECT \\* FROM `cleanup_runs` ORDER BY id DESC LIMIT").WillReturnRows(rows)

		runs, err := svc.History(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, uint(2), runs[0].ID)
		assert.Equal(t, "applied", runs[0].Outcome)
		assert.Equal(t, 4, runs[0].Removed)
	})

	t.Run("QueryError", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		svc := newTestService(afero.NewMemMapFs(), db)
		sqlMock.ExpectQuery(".*").WillReturnError(errors.New("gone"))

		_, err := svc.History(context.Background(), 500)
		assert.ErrorContains(t, err, "gone")
	})
}

func TestService_HistoryRoundTrip(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &models.CleanupRun{}))

	fsys := setupSite(t)
	svc := newTestService(fsys, db)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	_, err = svc.Apply(context.Background(), Request{DryRun: true, Origin: "cli"})
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), Request{Origin: "cli"})
	require.NoError(t, err)

	runs, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "applied", runs[0].Outcome)
	assert.Equal(t, 3, runs[0].Removed)
	assert.Equal(t, int64(len("stale page")+len("draft")), runs[0].ReclaimBytes)
	assert.Equal(t, testRoot, runs[0].Destination)
	assert.Equal(t, time.Second, runs[0].Duration())
	assert.Equal(t, "dry_run", runs[1].Outcome)
	assert.True(t, runs[1].DryRun)
	assert.Zero(t, runs[1].ReclaimBytes)
}

func TestDestinationLocks(t *testing.T) {
	locks := newDestinationLocks()

	var mu sync.Mutex
	active, peak := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(testRoot)
			defer unlock()

			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, peak)

	// Different roots do not block each other.
	unlockA := locks.lock("/a")
	unlockB := locks.lock("/b")
	unlockA()
	unlockB()
}
