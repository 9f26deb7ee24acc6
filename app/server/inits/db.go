package inits

import (
	"admin-backend/app/server/models"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func DB(driver string, conn string) (db *gorm.DB, err error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(conn)
	case "sqlite":
		dialector = sqlite.Open(conn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	// 打开连接
	if db, err = gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite 内存数据库每个连接都是独立的库
	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// 迁移
	if err = mig(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 返回
	return db, nil
}

func mig(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
	)
}
