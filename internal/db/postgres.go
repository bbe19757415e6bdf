package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/types"
	"github.com/campusconnect/campusconnect-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "campusconnect", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.StudentProfile{},
		&types.TeacherProfile{},
		&types.Module{},
		&types.Enrollment{},
		&types.CourseSession{},
		&types.CourseResource{},
		&types.Grade{},
		&types.Announcement{},
		&types.ChatMessage{},
		&types.Notification{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return s.ensureIndexes()
}

// ensureIndexes adds the constraints AutoMigrate cannot express. The partial
// unique index is what makes concurrent enrollment attempts race-free: at
// most one active row per (student, module) pair can ever be committed.
func (s *PostgresService) ensureIndexes() error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_enrollment_active
			ON enrollment (student_id, module_id) WHERE is_active`,
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			s.log.Error("Failed to ensure index", "error", err)
			return err
		}
	}
	return nil
}
