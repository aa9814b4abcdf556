package services

import (
	"log/slog"

	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	portsrepo "github.com/shikshaspace/user-service/internal/core/ports/repositories"
	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	idpClient portsidp.Client,
	googleValidator portsidp.GoogleTokenValidator,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(idpClient, repos.UserRepo)
	container.Sync = NewSyncService(idpClient, repos.UserRepo, logger)
	container.Auth = NewAuthService(idpClient, repos.UserRepo, container.Token, logger)
	container.OAuth2 = NewOAuth2Service(
		googleValidator,
		idpClient,
		repos.UserRepo,
		container.Token,
		container.Sync,
		cfg.FederatedSecretKey,
		logger,
	)
	container.User = NewUserService(repos.UserRepo, container.Sync, idpClient, logger)

	return container
}
