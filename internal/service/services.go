package service

import (
	"github.com/smikis/how-well-you-know/internal/config"
	"github.com/smikis/how-well-you-know/internal/repository"
)

type Services struct {
	Auth *AuthService
	Game *GameService
}

func NewServices(repos *repository.Repositories, notifier Notifier, cfg *config.Config) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, repos.Session, cfg),
		Game: NewGameService(repos.Game, repos.User, notifier),
	}
}
