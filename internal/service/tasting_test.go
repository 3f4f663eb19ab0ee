package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cuppa-app/backend/internal/models"
	"github.com/cuppa-app/backend/internal/types"
)

func newTestService(t *testing.T) *TastingService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TastingRecord{}))

	return NewTastingService(db)
}

func strPtr(s string) *string { return &s }

func validRecord() *models.TastingRecord {
	return &models.TastingRecord{
		Name:   "Yirgacheffe",
		Origin: "Ethiopia",
	}
}

func TestSaveAssignsIDAndDefaults(t *testing.T) {
	svc := newTestService(t)

	saved, err := svc.Save(context.Background(), validRecord())
	require.NoError(t, err)

	assert.NotZero(t, saved.ID)
	assert.False(t, saved.Date.IsZero())
	assert.Equal(t, models.DefaultRatings(), saved.Ratings)
	assert.Empty(t, saved.Flavors)
}

func TestSaveReportsAllMissingFields(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Save(context.Background(), &models.TastingRecord{})
	var validationErr *types.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Name", "Origin"}, validationErr.Fields)

	_, err = svc.Save(context.Background(), &models.TastingRecord{Name: "Gesha"})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Origin"}, validationErr.Fields)

	// Nothing was persisted by the failed saves.
	records, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveRejectsUnknownFlavor(t *testing.T) {
	svc := newTestService(t)

	record := validRecord()
	record.Flavors = models.FlavorList{"Chocolate", "Umami"}

	_, err := svc.Save(context.Background(), record)
	var inputErr *types.InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestRapidSavesGetDistinctIncreasingIDs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 50; i++ {
		record := validRecord()
		record.Name = fmt.Sprintf("Sample %d", i)
		saved, err := svc.Save(ctx, record)
		require.NoError(t, err)
		assert.Greater(t, saved.ID, lastID)
		lastID = saved.ID
	}
}

func TestDeleteAbsentIDIsNoOp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, validRecord())
	require.NoError(t, err)

	assert.NoError(t, svc.DeleteByID(ctx, saved.ID+12345))

	records, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	assert.NoError(t, svc.DeleteByID(ctx, saved.ID))
	// Deleting twice is just as fine.
	assert.NoError(t, svc.DeleteByID(ctx, saved.ID))

	records, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdateChart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, validRecord())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateChart(ctx, saved.ID, "data:image/png;base64,AAAA"))

	got, err := svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", got.ChartImage)

	// Last capture wins.
	require.NoError(t, svc.UpdateChart(ctx, saved.ID, "data:image/png;base64,BBBB"))
	got, err = svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,BBBB", got.ChartImage)

	assert.ErrorIs(t, svc.UpdateChart(ctx, saved.ID+1, "x"), gorm.ErrRecordNotFound)
}

func TestToggleFlavorTwiceRestoresSet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record := validRecord()
	record.Flavors = models.FlavorList{"Chocolate"}
	saved, err := svc.Save(ctx, record)
	require.NoError(t, err)

	toggled, err := svc.ToggleFlavor(ctx, saved.ID, "Honey")
	require.NoError(t, err)
	assert.True(t, toggled.Flavors.Has("Honey"))

	toggled, err = svc.ToggleFlavor(ctx, saved.ID, "Honey")
	require.NoError(t, err)
	assert.Equal(t, models.FlavorList{"Chocolate"}, toggled.Flavors)

	_, err = svc.ToggleFlavor(ctx, saved.ID, "Umami")
	var inputErr *types.InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestListByGroup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	espresso := validRecord()
	espresso.Group = strPtr("Espresso")
	_, err := svc.Save(ctx, espresso)
	require.NoError(t, err)

	loose := validRecord()
	loose.Name = "Mystery"
	_, err = svc.Save(ctx, loose)
	require.NoError(t, err)

	emptyGroup := validRecord()
	emptyGroup.Name = "Blank group"
	emptyGroup.Group = strPtr("")
	_, err = svc.Save(ctx, emptyGroup)
	require.NoError(t, err)

	all, err := svc.ListByGroup(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := svc.ListByGroup(ctx, "Espresso")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, espresso.ID, got[0].ID)

	// The Ungrouped sentinel matches nil and empty groups alike, without
	// rewriting what is stored.
	ungrouped, err := svc.ListByGroup(ctx, models.UngroupedLabel)
	require.NoError(t, err)
	assert.Len(t, ungrouped, 2)

	stored, err := svc.Get(ctx, emptyGroup.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Group)
	assert.Equal(t, "", *stored.Group)
}

func TestGroupsCatalog(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	groups, err := svc.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.UngroupedLabel, "Espresso", "Filter", "Single Origin"}, groups)

	record := validRecord()
	record.Group = strPtr("Competition")
	_, err = svc.Save(ctx, record)
	require.NoError(t, err)

	groups, err = svc.Groups(ctx)
	require.NoError(t, err)
	assert.Contains(t, groups, "Competition")
}

func TestAddGroup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	groups, err := svc.AddGroup(ctx, "  Decaf  ")
	require.NoError(t, err)
	assert.Contains(t, groups, "Decaf")

	// Duplicates and empty names are silently dropped.
	before := len(groups)
	groups, err = svc.AddGroup(ctx, "Decaf")
	require.NoError(t, err)
	assert.Len(t, groups, before)

	groups, err = svc.AddGroup(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, groups, before)
}

func TestRestoreReplacesCollection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	old, err := svc.Save(ctx, validRecord())
	require.NoError(t, err)

	imported := []models.TastingRecord{
		{ID: 100, Name: "First", Origin: "Kenya"},
		{ID: 200, Name: "Second", Origin: "Brazil"},
		{ID: 100, Name: "Duplicate of first", Origin: "Peru"},
	}
	require.NoError(t, svc.Restore(ctx, imported))

	records, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "First", records[0].Name, "first occurrence wins on duplicate IDs")
	assert.Equal(t, "Second", records[1].Name)

	_, err = svc.Get(ctx, old.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// New saves land past the largest imported ID.
	saved, err := svc.Save(ctx, validRecord())
	require.NoError(t, err)
	assert.Greater(t, saved.ID, int64(200))
}

func TestRestoreValidatesRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, validRecord())
	require.NoError(t, err)

	err = svc.Restore(ctx, []models.TastingRecord{{ID: 1, Name: "No origin"}})
	var validationErr *types.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Origin"}, validationErr.Fields)

	// The failed restore did not touch the stored collection.
	records, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFindSimilarFallbackOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	base := validRecord()
	base.Ratings = models.RatingsMap{"aroma": 9, "flavor": 8, "acidity": 9, "body": 3, "sweetness": 7}
	_, err := svc.Save(ctx, base)
	require.NoError(t, err)

	near := validRecord()
	near.Name = "Kenya AA"
	near.Ratings = models.RatingsMap{"aroma": 8, "flavor": 8, "acidity": 9, "body": 4, "sweetness": 7}
	_, err = svc.Save(ctx, near)
	require.NoError(t, err)

	far := validRecord()
	far.Name = "Brazil Natural"
	far.Ratings = models.RatingsMap{"aroma": 4, "flavor": 5, "acidity": 2, "body": 9, "sweetness": 5}
	_, err = svc.Save(ctx, far)
	require.NoError(t, err)

	similar, err := svc.FindSimilar(ctx, base.ID, 10)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, near.ID, similar[0].ID)
	assert.Equal(t, far.ID, similar[1].ID)

	limited, err := svc.FindSimilar(ctx, base.ID, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, near.ID, limited[0].ID)
}
