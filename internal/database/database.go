package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/yatube/community/internal/config"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// SQLiteDSN turns on foreign key enforcement so the cascade and set-null
// rules on posts hold for SQLite as well.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func Connect(cfg config.DBConfig, admin config.AdminConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedAdminUser(db, admin); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
	)
}

// SeedAdminUser creates the admin account when the users table is empty and
// a password has been configured.
func SeedAdminUser(db *gorm.DB, admin config.AdminConfig) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     admin.Username,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return errors.Join(errors.New("failed seeding admin user"), err)
	}

	logger.Info("admin_user_seeded", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	})
	return nil
}
