package di

import (
	"seds-backend/application/commands/bus"
	"seds-backend/application/ports"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/application/services"
	"seds-backend/infrastructure/config"
	"seds-backend/interfaces/http/rest/middleware"
	"seds-backend/pkg/auth"
	"seds-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Rules         *config.RulesWatcher
	Answers       ports.AnswerRepository
	Users         ports.UserRepository
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	Cache         *InMemoryCache
	Confirmations *services.ConfirmationService
	Scanner       *services.MissingAnswersScanner
	Metrics       *observability.Metrics
	Collector     *observability.Collector
	Tracer        *observability.Tracer
	JWTValidator  *auth.JWTValidator
	RateLimiters  RateLimiters
	Authenticator *middleware.Authenticator
}
