package database

import (
	"fmt"
	"log"

	"github.com/lumenworks/sitecms/internal/config"
	"github.com/lumenworks/sitecms/internal/document"
	"github.com/lumenworks/sitecms/internal/models"
	"github.com/lumenworks/sitecms/internal/reorder"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = mysql.Open(dsn)

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		dialector = postgres.Open(dsn)

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		dialector = sqlite.Open(cfg.DBDatabase)

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = sqlserver.Open(dsn)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.DBConnectionLimit)
	sqlDB.SetMaxIdleConns(cfg.DBConnectionLimit / 2)

	log.Printf("Connected to %s database: %s", cfg.DBType, cfg.DBDatabase)

	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Post{},
		&models.PostTranslation{},
		&models.Category{},
	)
}

// EnsureDisplayOrder backfills display_order for post types that have
// never been reordered: when every row of a type still carries the
// default 0, positions are seeded newest-created first.
func EnsureDisplayOrder(db *gorm.DB) error {
	for _, t := range []string{document.TypeCases, document.TypeNews, document.TypeEquipments} {
		var seeded int64
		err := db.Model(&models.Post{}).
			Where("type = ? AND display_order > 0", t).
			Count(&seeded).Error
		if err != nil {
			return err
		}
		if seeded > 0 {
			continue
		}

		var ids []int64
		err = db.Raw(
			"SELECT id FROM posts WHERE type = ? ORDER BY createdAt DESC",
			t,
		).Scan(&ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			continue
		}
		if err := reorder.ReorderPosts(db, ids, t); err != nil {
			return err
		}
		log.Printf("Seeded display order for %d %s posts", len(ids), t)
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
