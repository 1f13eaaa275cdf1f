// Package service implements the application's business logic.
package service

import (
	"context"

	"elfatih/internal/models"
	"elfatih/internal/repository"
	"elfatih/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterInput carries public registration fields. Role and active flag are
// not accepted here; registration always produces an active regular user.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Phone    string
	Password string
}

// CreateUserInput is the admin variant of RegisterInput with role control.
type CreateUserInput struct {
	RegisterInput
	UserType models.UserType
	IsActive bool
}

// UpdateUserInput carries optional field updates. Nil means unchanged.
type UpdateUserInput struct {
	Username *string
	Email    *string
	FullName *string
	Phone    *string
	Password *string
	UserType *models.UserType
	IsActive *bool
}

func hashPassword(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

func (s *UserService) buildUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	username, err := validation.Username(in.Username)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	email, err := validation.Email(in.Email)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	fullName, err := validation.FullName(in.FullName)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.Password(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var phone *string
	if in.Phone != "" {
		normalized, err := validation.Phone(in.Phone)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		phone = &normalized
	}

	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already registered")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	if phone != nil {
		if existing, err := s.userRepo.GetByPhone(ctx, *phone); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("Phone number already registered")
		}
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Username: username,
		Email:    email,
		FullName: fullName,
		Phone:    phone,
		Password: hashed,
		UserType: models.UserTypeUser,
		IsActive: true,
	}, nil
}

// Register creates a regular active user from public registration input.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.buildUser(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser creates a user with an arbitrary role. Admin only, enforced at
// the route level.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if !in.UserType.Valid() {
		return nil, models.NewValidationError("Invalid user type")
	}
	user, err := s.buildUser(ctx, in.RegisterInput)
	if err != nil {
		return nil, err
	}
	user.UserType = in.UserType
	user.IsActive = in.IsActive
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	normalized, err := validation.Phone(phone)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	user, err := s.userRepo.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", normalized)
	}
	return user, nil
}

// ListUsers returns a page of users. Non-admin callers only see active accounts.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int, isAdmin bool) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset, !isAdmin)
}

// Authenticate verifies credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Incorrect username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Incorrect username or password")
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Account is deactivated")
	}
	return user, nil
}

// UpdateUser applies optional field changes to targetID. Non-admin actors may
// only update their own profile and may not touch role or active flag.
func (s *UserService) UpdateUser(ctx context.Context, actor *models.User, targetID uint, in UpdateUserInput) (*models.User, error) {
	if !actor.IsAdmin() && actor.ID != targetID {
		return nil, models.NewForbiddenError("Not enough permissions")
	}
	if !actor.IsAdmin() && (in.UserType != nil || in.IsActive != nil) {
		return nil, models.NewForbiddenError("Only admins can change role or active status")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username, err := validation.Username(*in.Username)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != user.Username {
			if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
				return nil, err
			} else if existing != nil && existing.ID != user.ID {
				return nil, models.NewConflictError("Username already registered")
			}
			user.Username = username
		}
	}
	if in.Email != nil {
		email, err := validation.Email(*in.Email)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if email != user.Email {
			if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
				return nil, err
			} else if existing != nil && existing.ID != user.ID {
				return nil, models.NewConflictError("Email already registered")
			}
			user.Email = email
		}
	}
	if in.FullName != nil {
		fullName, err := validation.FullName(*in.FullName)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.FullName = fullName
	}
	if in.Phone != nil {
		if *in.Phone == "" {
			user.Phone = nil
		} else {
			normalized, err := validation.Phone(*in.Phone)
			if err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			if user.Phone == nil || normalized != *user.Phone {
				if existing, err := s.userRepo.GetByPhone(ctx, normalized); err != nil {
					return nil, err
				} else if existing != nil && existing.ID != user.ID {
					return nil, models.NewConflictError("Phone number already registered")
				}
				user.Phone = &normalized
			}
		}
	}
	if in.Password != nil {
		if err := validation.Password(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if in.UserType != nil {
		if !in.UserType.Valid() {
			return nil, models.NewValidationError("Invalid user type")
		}
		if actor.ID == targetID && *in.UserType != models.UserTypeAdmin {
			return nil, models.NewForbiddenError("Admins cannot demote themselves")
		}
		user.UserType = *in.UserType
	}
	if in.IsActive != nil {
		if actor.ID == targetID && !*in.IsActive {
			return nil, models.NewForbiddenError("Admins cannot deactivate themselves")
		}
		user.IsActive = *in.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes targetID. Admins may delete any account except their
// own; regular users may only delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, targetID uint) error {
	if actor.IsAdmin() && actor.ID == targetID {
		return models.NewForbiddenError("Admins cannot delete their own account")
	}
	if !actor.IsAdmin() && actor.ID != targetID {
		return models.NewForbiddenError("Not enough permissions")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, targetID)
}

// SetAdmin promotes or demotes targetID. Self-demotion is rejected.
func (s *UserService) SetAdmin(ctx context.Context, actorID, targetID uint, isAdmin bool) (*models.User, error) {
	if actorID == targetID && !isAdmin {
		return nil, models.NewForbiddenError("Admins cannot demote themselves")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if isAdmin {
		user.UserType = models.UserTypeAdmin
	} else {
		user.UserType = models.UserTypeUser
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive activates or deactivates targetID. Self-deactivation is rejected.
func (s *UserService) SetActive(ctx context.Context, actorID, targetID uint, active bool) (*models.User, error) {
	if actorID == targetID && !active {
		return nil, models.NewForbiddenError("Admins cannot deactivate themselves")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Stats returns aggregate account counts for the admin dashboard.
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.userRepo.Stats(ctx)
}
