package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

const testSecret = "test-secret"

var testRoles = []model.Role{{ID: 1, Name: "admin"}, {ID: 2, Name: "editor"}, {ID: 3, Name: "viewer"}}

type userFixture struct {
	svc   *UserService
	users *memUsers
	audit *memAudit
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	admin, err := config.NewAdminCredential(config.Config{
		AdminUser: "root", AdminEmail: "root@example.com", AdminPass: "rootpass", BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	users := newMemUsers(testRoles...)
	audit := &memAudit{users: users}
	svc := NewUserService(users, memRoles{roles: testRoles}, audit,
		JWTIssuer{Secret: testSecret, TTL: time.Minute}, admin, bcrypt.MinCost, zap.NewNop())
	return userFixture{svc: svc, users: users, audit: audit}
}

func (f userFixture) create(t *testing.T, username, password string) model.User {
	t.Helper()
	u, err := f.svc.Create(context.Background(), model.UserCreate{
		Name: "Ann", Username: username, Email: strings.ToUpper(username) + "@Example.com", Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestCreateUserHashesPassword(t *testing.T) {
	f := newUserFixture(t)
	u := f.create(t, "ann", "secret1")

	stored, err := f.users.GetByUsername(context.Background(), "ann")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "secret1"))
	assert.True(t, stored.IsActive)
	assert.Equal(t, "ann@example.com", stored.Email)
	require.NotNil(t, stored.Name)
	assert.Nil(t, stored.Surname)

	logs := f.users.entries()
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionCreate, logs[0].Action)
	assert.Equal(t, "User ann created", logs[0].Description)
	assert.Equal(t, u.ID, logs[0].UserID)
	assert.Equal(t, []uint64{logs[0].ID}, f.audit.announced)
}

func TestCreateUserDuplicateLeavesRecord(t *testing.T) {
	f := newUserFixture(t)
	f.create(t, "ann", "secret1")
	before, err := f.users.GetByUsername(context.Background(), "ann")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), model.UserCreate{Username: "ann", Email: "x@y.z", Password: "other99"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	after, err := f.users.GetByUsername(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, f.users.entries(), 1)
}

func TestLogin(t *testing.T) {
	f := newUserFixture(t)
	f.create(t, "ann", "secret1")
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		ok       bool
		roles    []string
	}{
		{"admin", "root", "rootpass", true, []string{"admin"}},
		{"admin wrong password", "root", "nope", false, nil},
		{"admin password other username", "ann", "rootpass", false, nil},
		{"stored user", "ann", "secret1", true, []string{}},
		{"stored user wrong password", "ann", "secret2", false, nil},
		{"unknown user", "bob", "secret1", false, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := f.svc.Login(ctx, tc.username, tc.password)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Empty(t, tok.Token)
				return
			}
			require.NoError(t, err)
			claims, err := utils.ParseAccessToken(testSecret, tok.Token)
			require.NoError(t, err)
			assert.Equal(t, tc.username, claims.Subject)
			assert.Equal(t, tc.roles, claims.Roles)
		})
	}
}

func TestLoginCarriesAssignedRoles(t *testing.T) {
	f := newUserFixture(t)
	f.create(t, "ann", "secret1")
	_, err := f.svc.AssignRoles(context.Background(), "ann", []string{"editor"})
	require.NoError(t, err)

	tok, err := f.svc.Login(context.Background(), "ann", "secret1")
	require.NoError(t, err)
	claims, err := utils.ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, claims.Roles)
}

func TestAssignRolesReplacesSet(t *testing.T) {
	f := newUserFixture(t)
	f.create(t, "ann", "secret1")
	ctx := context.Background()

	_, err := f.svc.AssignRoles(ctx, "ann", []string{"admin", "editor"})
	require.NoError(t, err)
	u, err := f.svc.AssignRoles(ctx, "ann", []string{"viewer", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, u.RoleNames())

	stored, err := f.users.GetByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, stored.RoleNames())

	last := f.users.lastLog()
	assert.Equal(t, model.ActionUpdate, last.Action)
	assert.Equal(t, "Roles assigned: [viewer] for user ann", last.Description)
}

func TestAssignRolesMissingUserWritesNoLog(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.AssignRoles(context.Background(), "ghost", []string{"admin"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, f.users.entries())
}

func TestUpdatePassword(t *testing.T) {
	f := newUserFixture(t)
	f.create(t, "ann", "secret1")
	ctx := context.Background()
	before, err := f.users.GetByUsername(ctx, "ann")
	require.NoError(t, err)

	err = f.svc.UpdatePassword(ctx, "ann", "wrong", "secret2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	unchanged, err := f.users.GetByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, unchanged.PasswordHash)
	assert.Len(t, f.users.entries(), 1)

	require.NoError(t, f.svc.UpdatePassword(ctx, "ann", "secret1", "secret2"))
	_, err = f.svc.Login(ctx, "ann", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "ann", "secret2")
	assert.NoError(t, err)
	assert.Len(t, f.users.entries(), 2)

	assert.ErrorIs(t, f.svc.UpdatePassword(ctx, "ghost", "a", "b"), ErrUserNotFound)
}

func TestSetActiveLogsTransition(t *testing.T) {
	f := newUserFixture(t)
	f.create(t, "ann", "secret1")

	u, err := f.svc.SetActive(context.Background(), "ann", false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	last := f.users.lastLog()
	assert.Equal(t, "User ann changed state from true to false", last.Description)

	_, err = f.svc.SetActive(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserLogsSnapshot(t *testing.T) {
	f := newUserFixture(t)
	u := f.create(t, "ann", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, "ann"))
	_, err := f.users.GetByUsername(ctx, "ann")
	assert.ErrorIs(t, err, ErrUserNotFound)

	last := f.users.lastLog()
	assert.Equal(t, model.ActionDelete, last.Action)
	assert.Equal(t, u.ID, last.UserID)
	require.True(t, strings.HasPrefix(last.Description, "User deleted. "))

	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(last.Description, "User deleted. ")), &snap))
	assert.Equal(t, "ann", snap["username"])
	assert.NotContains(t, last.Description, "$2a$", "password hash stays out of the snapshot")

	assert.ErrorIs(t, f.svc.Delete(ctx, "ann"), ErrUserNotFound)
}

func TestLogsListsUserEntries(t *testing.T) {
	f := newUserFixture(t)
	f.create(t, "ann", "secret1")
	f.create(t, "bob", "secret1")
	_, err := f.svc.SetActive(context.Background(), "ann", false)
	require.NoError(t, err)

	logs, err := f.svc.Logs(context.Background(), "ann")
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestMutationsWithUnresolvedActionChangeNothing(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		action model.ActionName
		run    func(f userFixture) error
	}{
		{"create", model.ActionCreate, func(f userFixture) error {
			_, err := f.svc.Create(ctx, model.UserCreate{Username: "bob", Email: "bob@example.com", Password: "secret1"})
			return err
		}},
		{"assign roles", model.ActionUpdate, func(f userFixture) error {
			_, err := f.svc.AssignRoles(ctx, "ann", []string{"admin"})
			return err
		}},
		{"update password", model.ActionUpdate, func(f userFixture) error {
			return f.svc.UpdatePassword(ctx, "ann", "secret1", "secret2")
		}},
		{"set active", model.ActionUpdate, func(f userFixture) error {
			_, err := f.svc.SetActive(ctx, "ann", false)
			return err
		}},
		{"delete", model.ActionDelete, func(f userFixture) error {
			return f.svc.Delete(ctx, "ann")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newUserFixture(t)
			f.create(t, "ann", "secret1")
			before, err := f.users.ListAll(ctx)
			require.NoError(t, err)
			logsBefore := f.users.entries()

			f.audit.missing = map[model.ActionName]bool{tc.action: true}
			err = tc.run(f)
			assert.ErrorIs(t, err, repository.ErrActionNotFound)

			after, err := f.users.ListAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.Equal(t, logsBefore, f.users.entries())
			assert.Len(t, f.audit.announced, 1, "only the fixture's own create is announced")
		})
	}
}

func TestPasswordOverBcryptLimitRejected(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	long := strings.Repeat("p", 80)

	_, err := f.svc.Create(ctx, model.UserCreate{Username: "bob", Email: "bob@example.com", Password: long})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = f.users.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)

	f.create(t, "ann", "secret1")
	assert.ErrorIs(t, f.svc.UpdatePassword(ctx, "ann", "secret1", long), ErrPasswordTooLong)
	_, err = f.svc.Login(ctx, "ann", "secret1")
	assert.NoError(t, err)
	assert.Len(t, f.users.entries(), 1)
}
