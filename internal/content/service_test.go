package content

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/solemate/solemate-backend/pkg/db/models"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.HomepageSection{}))
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestSectionLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hero, err := svc.CreateSection(ctx, SectionInput{
		Kind:     "hero",
		Title:    "New Season",
		Position: 1,
		Payload:  json.RawMessage(`{"image":"hero.jpg","cta":"/collections/new"}`),
	})
	require.NoError(t, err)
	require.True(t, hero.IsActive)

	_, err = svc.CreateSection(ctx, SectionInput{Kind: "carousel-of-doom"})
	require.Error(t, err)

	grid, err := svc.CreateSection(ctx, SectionInput{
		Kind:     "product_grid",
		Title:    "Best Sellers",
		Position: 2,
	})
	require.NoError(t, err)

	home, err := svc.Homepage(ctx)
	require.NoError(t, err)
	require.Len(t, home, 2)
	require.Equal(t, "hero", home[0].Kind)
	require.Equal(t, "product_grid", home[1].Kind)

	// Deactivated sections disappear from the storefront but not the console.
	inactive := false
	_, err = svc.UpdateSection(ctx, grid.ID, SectionInput{Position: 2, IsActive: &inactive})
	require.NoError(t, err)

	home, err = svc.Homepage(ctx)
	require.NoError(t, err)
	require.Len(t, home, 1)

	all, err := svc.ListSections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, svc.DeleteSection(ctx, hero.ID))
	home, err = svc.Homepage(ctx)
	require.NoError(t, err)
	require.Empty(t, home)
}

func TestUpdateSectionReordersAndRetitles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	section, err := svc.CreateSection(ctx, SectionInput{Kind: "banner", Title: "Sale", Position: 5})
	require.NoError(t, err)

	updated, err := svc.UpdateSection(ctx, section.ID, SectionInput{
		Title:    "Monsoon Sale",
		Position: 1,
		Payload:  json.RawMessage(`{"discount":"20%"}`),
	})
	require.NoError(t, err)
	require.Equal(t, "Monsoon Sale", updated.Title)
	require.Equal(t, 1, updated.Position)
	require.Equal(t, "banner", updated.Kind)
}
