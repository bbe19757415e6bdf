package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

// RegisterInput is the account signup payload. Role is restricted to student
// and teacher; admin accounts are provisioned out of band.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      types.Role

	// Student fields.
	StudentNumber string
	Major         string
	Year          int

	// Teacher fields.
	EmployeeNumber string
	Department     string
	Specialization string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	VerifyPassword(hash, plain string) bool
}

// TxRunner runs fn atomically. The gorm implementation wraps a database
// transaction; tests substitute a pass-through.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct{ db *gorm.DB }

func NewTxRunner(db *gorm.DB) TxRunner { return &gormTxRunner{db: db} }

func (r *gormTxRunner) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type userService struct {
	log      *logger.Logger
	txr      TxRunner
	userRepo repos.UserRepo
}

func NewUserService(txr TxRunner, userRepo repos.UserRepo, baseLog *logger.Logger) UserService {
	return &userService{
		log:      baseLog.With("service", "UserService"),
		txr:      txr,
		userRepo: userRepo,
	}
}

// Register creates the account and its role profile in one transaction, so a
// half-registered user (account without profile) can never be observed.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	if in.Role != types.RoleStudent && in.Role != types.RoleTeacher {
		return nil, ErrInvalidRole
	}
	if len(in.Password) < 8 {
		return nil, ErrWeakPassword
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if taken, err := s.userRepo.EmailExists(ctx, nil, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.userRepo.UsernameExists(ctx, nil, username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		Phone:     in.Phone,
	}

	err = s.txr.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		switch in.Role {
		case types.RoleStudent:
			_, err := s.userRepo.CreateStudentProfile(ctx, tx, &types.StudentProfile{
				UserID:        user.ID,
				StudentNumber: in.StudentNumber,
				Major:         in.Major,
				Year:          in.Year,
			})
			return err
		case types.RoleTeacher:
			_, err := s.userRepo.CreateTeacherProfile(ctx, tx, &types.TeacherProfile{
				UserID:         user.ID,
				EmployeeNumber: in.EmployeeNumber,
				Department:     in.Department,
				Specialization: in.Specialization,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// ChangePassword rotates the account password after proving knowledge of the
// current one. The new password is held to the same length rule as signup.
func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(user.Password, oldPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, nil, userID, string(hash)); err != nil {
		return err
	}
	s.log.Info("password changed", "user_id", userID)
	return nil
}

func (s *userService) VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
