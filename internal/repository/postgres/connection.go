package postgres

import (
	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/smikis/how-well-you-know/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Game{},
		&domain.GamePlayer{},
		&domain.Question{},
		&domain.QuestionVariant{},
		&domain.QuestionUserChoice{},
		&domain.QuestionUserGuess{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Session: NewSessionRepository(db),
		Game:    NewGameRepository(db),
	}
}
