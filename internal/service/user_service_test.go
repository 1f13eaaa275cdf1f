package service

import (
	"context"
	"strings"
	"testing"

	"elfatih/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "newuser",
		Email:    "newuser@example.com",
		FullName: "New User",
		Phone:    "+15551234567",
		Password: "secret1",
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"username too short", func(in *RegisterInput) { in.Username = "ab" }},
		{"username bad characters", func(in *RegisterInput) { in.Username = "bad user!" }},
		{"invalid email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"full name too short", func(in *RegisterInput) { in.FullName = "x" }},
		{"password too short", func(in *RegisterInput) { in.Password = "abc" }},
		{"password too long", func(in *RegisterInput) { in.Password = strings.Repeat("x", 101) }},
		{"invalid phone", func(in *RegisterInput) { in.Phone = "0123" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewUserService(noopUserRepo())
			in := validRegisterInput()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_Register_Defaults(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	var created *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		created = u
		return nil
	}

	svc := NewUserService(repo)
	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, models.UserTypeUser, user.UserType)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret1", user.Password, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))
	require.NotNil(t, user.Phone)
	assert.Equal(t, "+15551234567", *user.Phone)
}

func TestUserService_Register_Duplicates(t *testing.T) {
	t.Parallel()

	t.Run("username taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 7}, nil
		}
		_, err := NewUserService(repo).Register(context.Background(), validRegisterInput())
		assertAppError(t, err, "CONFLICT")
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 7}, nil
		}
		_, err := NewUserService(repo).Register(context.Background(), validRegisterInput())
		assertAppError(t, err, "CONFLICT")
	})

	t.Run("phone taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByPhoneFn = func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 7}, nil
		}
		_, err := NewUserService(repo).Register(context.Background(), validRegisterInput())
		assertAppError(t, err, "CONFLICT")
	})
}

func TestUserService_CreateUser_RoleControl(t *testing.T) {
	t.Parallel()

	t.Run("invalid role rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewUserService(noopUserRepo()).CreateUser(context.Background(), CreateUserInput{
			RegisterInput: validRegisterInput(),
			UserType:      models.UserType("SUPERUSER"),
			IsActive:      true,
		})
		assertValidationError(t, err)
	})

	t.Run("admin role applied", func(t *testing.T) {
		t.Parallel()
		user, err := NewUserService(noopUserRepo()).CreateUser(context.Background(), CreateUserInput{
			RegisterInput: validRegisterInput(),
			UserType:      models.UserTypeAdmin,
			IsActive:      false,
		})
		require.NoError(t, err)
		assert.Equal(t, models.UserTypeAdmin, user.UserType)
		assert.False(t, user.IsActive)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	account := func(active bool) *models.User {
		return &models.User{
			ID:       3,
			Username: "known",
			Password: string(hashed),
			UserType: models.UserTypeUser,
			IsActive: active,
		}
	}

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.Authenticate(context.Background(), "ghost", "secret1")
		assertAppError(t, err, "UNAUTHORIZED")
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			return account(true), nil
		}
		_, err := NewUserService(repo).Authenticate(context.Background(), "known", "wrong")
		assertAppError(t, err, "UNAUTHORIZED")
	})

	t.Run("inactive account", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			return account(false), nil
		}
		_, err := NewUserService(repo).Authenticate(context.Background(), "known", "secret1")
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			return account(true), nil
		}
		user, err := NewUserService(repo).Authenticate(context.Background(), "known", "secret1")
		require.NoError(t, err)
		assert.Equal(t, uint(3), user.ID)
	})
}

func TestUserService_UpdateUser_Permissions(t *testing.T) {
	t.Parallel()

	regular := &models.User{ID: 1, UserType: models.UserTypeUser, IsActive: true}
	admin := &models.User{ID: 2, UserType: models.UserTypeAdmin, IsActive: true}

	t.Run("regular user cannot edit others", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.UpdateUser(context.Background(), regular, 9, UpdateUserInput{})
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("regular user cannot change role", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		adminType := models.UserTypeAdmin
		_, err := svc.UpdateUser(context.Background(), regular, regular.ID, UpdateUserInput{
			UserType: &adminType,
		})
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
			return &models.User{ID: admin.ID, UserType: models.UserTypeAdmin, IsActive: true}, nil
		}
		userType := models.UserTypeUser
		_, err := NewUserService(repo).UpdateUser(context.Background(), admin, admin.ID, UpdateUserInput{
			UserType: &userType,
		})
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin cannot deactivate self", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
			return &models.User{ID: admin.ID, UserType: models.UserTypeAdmin, IsActive: true}, nil
		}
		inactive := false
		_, err := NewUserService(repo).UpdateUser(context.Background(), admin, admin.ID, UpdateUserInput{
			IsActive: &inactive,
		})
		assertAppError(t, err, "FORBIDDEN")
	})
}

func TestUserService_UpdateUser_Fields(t *testing.T) {
	t.Parallel()

	t.Run("empty phone clears the field", func(t *testing.T) {
		t.Parallel()
		phone := "+15551234567"
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "u1", Phone: &phone, IsActive: true}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		actor := &models.User{ID: 1, UserType: models.UserTypeUser, IsActive: true}
		empty := ""
		user, err := NewUserService(repo).UpdateUser(context.Background(), actor, 1, UpdateUserInput{
			Phone: &empty,
		})
		require.NoError(t, err)
		assert.Nil(t, user.Phone)
		require.NotNil(t, saved)
		assert.Nil(t, saved.Phone)
	})

	t.Run("changed username is checked for conflicts", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "old_name", IsActive: true}, nil
		}
		repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 42}, nil
		}
		actor := &models.User{ID: 1, UserType: models.UserTypeUser, IsActive: true}
		newName := "taken_name"
		_, err := NewUserService(repo).UpdateUser(context.Background(), actor, 1, UpdateUserInput{
			Username: &newName,
		})
		assertAppError(t, err, "CONFLICT")
	})

	t.Run("unchanged username skips conflict check", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "same_name", IsActive: true}, nil
		}
		repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			t.Fatal("conflict check should not run for an unchanged username")
			return nil, nil
		}
		actor := &models.User{ID: 1, UserType: models.UserTypeUser, IsActive: true}
		same := "same_name"
		_, err := NewUserService(repo).UpdateUser(context.Background(), actor, 1, UpdateUserInput{
			Username: &same,
		})
		require.NoError(t, err)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	t.Run("admin cannot delete own account", func(t *testing.T) {
		t.Parallel()
		admin := &models.User{ID: 2, UserType: models.UserTypeAdmin}
		err := NewUserService(noopUserRepo()).DeleteUser(context.Background(), admin, 2)
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("regular user cannot delete others", func(t *testing.T) {
		t.Parallel()
		regular := &models.User{ID: 1, UserType: models.UserTypeUser}
		err := NewUserService(noopUserRepo()).DeleteUser(context.Background(), regular, 5)
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("regular user can delete self", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		deleted := uint(0)
		repo.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		regular := &models.User{ID: 1, UserType: models.UserTypeUser}
		require.NoError(t, NewUserService(repo).DeleteUser(context.Background(), regular, 1))
		assert.Equal(t, uint(1), deleted)
	})
}

func TestUserService_SetAdminAndActive_SelfGuards(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo())

	_, err := svc.SetAdmin(context.Background(), 4, 4, false)
	assertAppError(t, err, "FORBIDDEN")

	_, err = svc.SetActive(context.Background(), 4, 4, false)
	assertAppError(t, err, "FORBIDDEN")

	// Promoting or activating someone else is fine.
	user, err := svc.SetAdmin(context.Background(), 4, 5, true)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeAdmin, user.UserType)
}

func TestUserService_ListUsers_VisibilityByRole(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	var gotActiveOnly bool
	repo.listFn = func(_ context.Context, _, _ int, activeOnly bool) ([]models.User, error) {
		gotActiveOnly = activeOnly
		return nil, nil
	}
	svc := NewUserService(repo)

	_, err := svc.ListUsers(context.Background(), 10, 0, false)
	require.NoError(t, err)
	assert.True(t, gotActiveOnly, "non-admin listings must exclude inactive accounts")

	_, err = svc.ListUsers(context.Background(), 10, 0, true)
	require.NoError(t, err)
	assert.False(t, gotActiveOnly)
}
