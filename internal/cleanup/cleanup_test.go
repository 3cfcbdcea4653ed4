package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rental-portal/internal/database"
	"rental-portal/internal/models"
	"rental-portal/internal/photos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	db    *database.GormDB
	store *photos.FilesystemStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := database.NewSQLite("file:"+name+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, gdb.InitSchema())
	t.Cleanup(func() { _ = gdb.Close() })

	store, err := photos.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	return &fixture{
		svc:   NewService(gdb.DB(), store, photos.NewResolver(photos.DefaultRoot), nil),
		db:    gdb,
		store: store,
	}
}

func (f *fixture) put(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, f.store.Put(context.Background(), key, []byte("jpeg"), "image/jpeg"))
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	p := &models.Property{Name: "The Loft District", Address: "1 Main St", City: "Atlanta", State: "GA", ZipCode: "30303", Bathrooms: "1"}
	require.NoError(t, f.db.CreateProperty(ctx, p))
	require.NoError(t, f.db.CreateUnit(ctx, &models.Unit{PropertyID: p.ID, UnitNumber: "2A", Bathrooms: "1"}))

	f.put(t, "photos/properties/atlanta-the-loft-district/property-exterior/1-front.jpg")
	f.put(t, "photos/properties/atlanta-the-loft-district/unit-2a/1-kitchen.jpg")
	f.put(t, "photos/properties/atlanta-the-loft-district/unit-9z/1-old.jpg")
	f.put(t, "photos/properties/atlanta-the-loft-district/unit-9z/2-old.jpg")
	f.put(t, "photos/properties/denver-gone-tower/property-interior/1-lobby.jpg")
}

func TestFindOrphans(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	orphans, err := f.svc.FindOrphans(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []Orphan{
		{Directory: "photos/properties/atlanta-the-loft-district/unit-9z", Reason: models.CleanupReasonOrphanUnit},
		{Directory: "photos/properties/denver-gone-tower", Reason: models.CleanupReasonOrphanProperty},
	}, orphans)
}

func TestSweepDryRunDeletesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	result, err := f.svc.Sweep(context.Background(), DefaultCleanupConfig())
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.TargetCount)
	assert.Equal(t, 0, result.DeletedCount)
	assert.Len(t, result.Orphans, 2)

	_, err = os.Stat(filepath.Join(f.store.BaseDir(), "photos", "properties", "denver-gone-tower"))
	assert.NoError(t, err)

	logs, err := f.svc.GetRecentLogs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSweepDeletesAndLogs(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	result, err := f.svc.Sweep(context.Background(), CleanupConfig{MaxDeletionCount: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedCount)
	assert.Equal(t, 3, result.FileCount)
	assert.Zero(t, result.ErrorCount)

	base := f.store.BaseDir()
	_, err = os.Stat(filepath.Join(base, "photos", "properties", "denver-gone-tower"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "photos", "properties", "atlanta-the-loft-district", "unit-9z"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "photos", "properties", "atlanta-the-loft-district", "unit-2a", "1-kitchen.jpg"))
	assert.NoError(t, err)

	logs, err := f.svc.GetRecentLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	total := 0
	for _, l := range logs {
		total += l.FileCount
	}
	assert.Equal(t, 3, total)

	again, err := f.svc.Sweep(context.Background(), CleanupConfig{MaxDeletionCount: 10})
	require.NoError(t, err)
	assert.Zero(t, again.TargetCount)
}

func TestSweepRefusesAboveLimit(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.svc.Sweep(context.Background(), CleanupConfig{MaxDeletionCount: 1})
	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.Contains(t, err.Error(), "safety check failed")

	_, err = os.Stat(filepath.Join(f.store.BaseDir(), "photos", "properties", "denver-gone-tower"))
	assert.NoError(t, err)
}

func TestSweepEmptyStore(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Sweep(context.Background(), CleanupConfig{})
	require.NoError(t, err)
	assert.Zero(t, result.TargetCount)
}
