package seeders

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/repository/repotest"
	"github.com/cradoe/gopass"
	"github.com/stretchr/testify/require"
)

const adminPassword = "Kx9#mTq2$vLw7!"

func TestSeederRun(t *testing.T) {
	db, _ := repotest.New(t)
	seeder := New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	// a value changed by an administrator survives reseeding
	require.NoError(t, db.Settings().Upsert(ctx, nil, models.SettingMaintenanceMode, "true", time.Now().UTC()))

	require.NoError(t, seeder.Run(ctx, "Admin@Example.com", adminPassword))

	values, err := db.Settings().GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, values, 6)
	require.Equal(t, "true", values[models.SettingMaintenanceMode])
	require.Equal(t, "true", values[models.SettingWithdrawalEnabled])

	admin, found, err := db.User().GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, admin.IsAdmin())

	ok, err := gopass.ComparePasswordAndHash(adminPassword, admin.HashedPassword)
	require.NoError(t, err)
	require.True(t, ok)

	// second run is a no-op
	require.NoError(t, seeder.Run(ctx, "admin@example.com", adminPassword))
	users, err := db.User().List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 1)
}
