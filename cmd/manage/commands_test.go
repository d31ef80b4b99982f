package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"assistant/models"
	"assistant/pkg/database"
	"assistant/pkg/repository"
)

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(func() (*gorm.DB, error) { return db, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreateSuperuser(t *testing.T) {
	db := database.OpenTest(t)

	out, err := run(t, db, "createsuperuser", "--username", "root", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, `superuser "root" created`)

	u, err := repository.NewUserRepo(db).GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.CheckPassword("pw"))
	assert.Equal(t, "Admin", u.DisplayName())

	_, err = run(t, db, "createsuperuser", "--username", "root", "--password", "pw")
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateSuperuserRequiresCredentials(t *testing.T) {
	t.Setenv("MANAGE_PASSWORD", "")
	_, err := run(t, database.OpenTest(t), "createsuperuser", "--username", "root")
	assert.Error(t, err)
}

func TestPromoteAndRevoke(t *testing.T) {
	db := database.OpenTest(t)
	u := &models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, repository.NewUserRepo(db).CreateWithProfile(context.Background(), u, ""))

	_, err := run(t, db, "promote", "alice")
	require.NoError(t, err)
	got, _ := repository.NewUserRepo(db).GetByID(context.Background(), u.ID)
	assert.True(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)

	_, err = run(t, db, "promote", "alice", "--revoke")
	require.NoError(t, err)
	got, _ = repository.NewUserRepo(db).GetByID(context.Background(), u.ID)
	assert.False(t, got.IsStaff)

	_, err = run(t, db, "promote", "ghost")
	assert.ErrorContains(t, err, `no user named "ghost"`)
}

func TestSetRole(t *testing.T) {
	db := database.OpenTest(t)
	u := &models.User{Username: "bob", PasswordHash: "x"}
	require.NoError(t, repository.NewUserRepo(db).CreateWithProfile(context.Background(), u, ""))

	_, err := run(t, db, "setrole", "bob", "Tutor")
	require.NoError(t, err)
	got, _ := repository.NewUserRepo(db).GetByID(context.Background(), u.ID)
	assert.Equal(t, "Tutor", got.DisplayName())

	_, err = run(t, db, "setrole", "bob")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	out, err := run(t, database.OpenTest(t), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
}
