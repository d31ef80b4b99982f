package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"assistant/models"
	"assistant/pkg/database"
)

func newUser(t *testing.T, db *gorm.DB, name string, staff bool) *models.User {
	t.Helper()
	u := &models.User{Username: name, IsStaff: staff}
	require.NoError(t, u.SetPassword("pw"))
	require.NoError(t, NewUserRepo(db).CreateWithProfile(context.Background(), u, ""))
	return u
}

func TestCreateWithProfileRejectsDuplicateUsername(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	first := newUser(t, db, "alice", false)
	require.NotNil(t, first.Profile)
	assert.Equal(t, models.DefaultProfileRole, first.Profile.Role)

	dup := &models.User{Username: "alice", PasswordHash: "x"}
	err := repo.CreateWithProfile(ctx, dup, "")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var users, profiles int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.UserProfile{}).Count(&profiles)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, profiles)
}

func TestGetByUsernameNotFound(t *testing.T) {
	db := database.OpenTest(t)
	_, err := NewUserRepo(db).GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetFlagsAndRole(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	u := newUser(t, db, "bob", false)

	require.NoError(t, repo.SetFlags(ctx, u.ID, true, true))
	require.NoError(t, repo.SetRole(ctx, u.ID, "Admin"))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsStaff)
	assert.True(t, got.IsSuperuser)
	assert.Equal(t, "Admin", got.DisplayName())

	assert.ErrorIs(t, repo.SetFlags(ctx, 9999, true, false), ErrNotFound)
}

func TestRecordExchangeCreatesChatAndOrderedPair(t *testing.T) {
	db := database.OpenTest(t)
	ctx := context.Background()
	chats := NewChatRepo(db)
	messages := NewMessageRepo(db)
	u := newUser(t, db, "carol", false)

	title := "hi"
	chat := &models.Chat{UserID: u.ID, Title: &title}
	um, am, err := chats.RecordExchange(ctx, chat, "hi", "hello there")
	require.NoError(t, err)
	require.NotZero(t, chat.ID)
	assert.Equal(t, models.RoleUser, um.Role)
	assert.Equal(t, models.RoleAssistant, am.Role)

	_, _, err = chats.RecordExchange(ctx, chat, "again", "sure")
	require.NoError(t, err)

	msgs, err := messages.ListForChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"hi", "hello there", "again", "sure"},
		[]string{msgs[0].Text, msgs[1].Text, msgs[2].Text, msgs[3].Text})
	for i := 1; i < len(msgs); i++ {
		prev, cur := msgs[i-1], msgs[i]
		assert.True(t, prev.CreatedAt.Before(cur.CreatedAt) || (prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID < cur.ID))
	}

	n, err := chats.CountMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestListForChatEmptyIsNotNil(t *testing.T) {
	db := database.OpenTest(t)
	msgs, err := NewMessageRepo(db).ListForChat(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestListVisibleScopesByPrivilege(t *testing.T) {
	db := database.OpenTest(t)
	ctx := context.Background()
	chats := NewChatRepo(db)

	alice := newUser(t, db, "alice", false)
	bob := newUser(t, db, "bob", false)
	admin := newUser(t, db, "admin", true)

	for i, owner := range []*models.User{alice, alice, bob} {
		c := &models.Chat{UserID: owner.ID}
		_, _, err := chats.RecordExchange(ctx, c, fmt.Sprintf("q%d", i), "a")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	own, err := chats.ListVisible(ctx, alice)
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, c := range own {
		assert.Equal(t, alice.ID, c.UserID)
		assert.EqualValues(t, 2, c.MessageCount)
	}
	assert.True(t, !own[0].UpdatedAt.Before(own[1].UpdatedAt), "most recently updated first")

	all, err := chats.ListVisible(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "bob", all[0].User.Username)

	root := &models.User{Username: "root", IsSuperuser: true, PasswordHash: "x"}
	require.NoError(t, NewUserRepo(db).CreateWithProfile(ctx, root, ""))
	viaSuperuser, err := chats.ListVisible(ctx, root)
	require.NoError(t, err)
	assert.Len(t, viaSuperuser, 3)
}
