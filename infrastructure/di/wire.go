//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"seds-backend/application/ports"
	"seds-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideRulesWatcher,
	ProvideRulesSource,
	ProvideAnswerRepository,
	ProvideQuestionRepository,
	ProvideStateFormRepository,
	ProvideFormTypeRepository,
	ProvideFormTemplateRepository,
	ProvideUserRepository,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideCollector,
	ProvideMetricsRecorder,
	ProvideTracer,
	ProvideInMemoryCache,
	wire.Bind(new(ports.Cache), new(*InMemoryCache)),
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideConfirmationStore,
	ProvideConfirmationService,
	ProvideMissingAnswersScanner,
	ProvideJWTValidator,
	ProvideRateLimiters,
	ProvideAuthenticator,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
