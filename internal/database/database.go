package database

import (
	"fmt"

	"stresscheck-go/internal/config"
	logging "stresscheck-go/internal/logging"
	"stresscheck-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
		// Driver errors become portable gorm errors; the submission flow
		// relies on gorm.ErrDuplicatedKey for its duplicate guard.
		TranslateError: true,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// AutoMigrate creates tables, columns, foreign keys, and the declared
	// indexes — including the unique (user_id, period) index on
	// stress_checks that backs the once-per-period submission rule.
	err := DB.AutoMigrate(
		&models.Company{},
		&models.Department{},
		&models.User{},
		&models.StressCheck{},
		&models.DraftAnswer{},
		&models.AlertState{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	// Covering index for the dashboard/alert aggregation queries, which
	// AutoMigrate cannot express.
	statsIndex := `CREATE INDEX IF NOT EXISTS idx_stress_checks_period_stats ON stress_checks (period, is_high_stress, total_score);`
	if err := DB.Exec(statsIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on stress_checks table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
