package services

import (
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories/sqlstore"
)

// ServiceContainer holds the service instances bound to one database session
type ServiceContainer struct {
	UserService UserService
}

// Factory builds a ServiceContainer for an open session. Handlers call it
// once per invocation, after the session is established.
type Factory func(session *database.Session) *ServiceContainer

// NewFactory returns a Factory that wires SQL repositories into services
func NewFactory(metrics *observability.Metrics, logger *logrus.Logger) Factory {
	return func(session *database.Session) *ServiceContainer {
		userRepo := sqlstore.NewUserRepository(session, metrics, logger)
		return &ServiceContainer{
			UserService: NewUserService(userRepo, logger),
		}
	}
}
