package di

import (
	"context"
	"fmt"
	"time"

	"seds-backend/application/commands"
	"seds-backend/application/commands/bus"
	commandhandlers "seds-backend/application/commands/handlers"
	"seds-backend/application/ports"
	querybus "seds-backend/application/queries/bus"
	queryhandlers "seds-backend/application/queries/handlers"
	"seds-backend/application/services"
	domainconfig "seds-backend/domain/config"
	"seds-backend/infrastructure/config"
	"seds-backend/infrastructure/messaging/eventbridge"
	"seds-backend/infrastructure/persistence"
	"seds-backend/infrastructure/persistence/dynamodb"
	"seds-backend/infrastructure/persistence/memory"
	"seds-backend/interfaces/http/rest/middleware"
	"seds-backend/pkg/auth"
	"seds-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zcfg.Build(zap.Fields(
		zap.String("stage", cfg.Stage),
		zap.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, nil, err
	}

	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideAWSConfig creates AWS configuration. A DynamoDB endpoint override
// means DynamoDB Local, which accepts any static credentials.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.DynamoDBEndpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideRulesWatcher loads the domain rules. The file is only watched in
// development; deployed stages pick up rule changes on the next cold start.
func ProvideRulesWatcher(cfg *config.Config, logger *zap.Logger) (*config.RulesWatcher, func(), error) {
	watch := cfg.IsDevelopment() && !cfg.IsLambda && cfg.DomainConfigPath != ""
	watcher, err := config.NewRulesWatcher(cfg.DomainConfigPath, cfg.Environment, watch, logger)
	if err != nil {
		return nil, nil, err
	}
	return watcher, watcher.Stop, nil
}

// ProvideRulesSource exposes the watcher as the rules source of the handlers
func ProvideRulesSource(watcher *config.RulesWatcher) domainconfig.Source {
	return watcher
}

// ProvideAnswerRepository creates the answer repository behind a circuit breaker
func ProvideAnswerRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.AnswerRepository {
	repo := dynamodb.NewAnswerRepository(client, cfg.AnswersTable, cfg.StateFormIndex, logger)
	return persistence.NewCircuitBreakerAnswerRepository(
		repo,
		persistence.DefaultCircuitBreakerConfig("answers"),
		logger,
	)
}

// ProvideQuestionRepository creates a question repository
func ProvideQuestionRepository(client *awsdynamodb.Client, cfg *config.Config) ports.QuestionRepository {
	return dynamodb.NewQuestionRepository(client, cfg.QuestionsTable)
}

// ProvideStateFormRepository creates a state form repository
func ProvideStateFormRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.StateFormRepository {
	return dynamodb.NewStateFormRepository(client, cfg.StateFormsTable, logger)
}

// ProvideFormTypeRepository creates a form type repository
func ProvideFormTypeRepository(client *awsdynamodb.Client, cfg *config.Config) ports.FormTypeRepository {
	return dynamodb.NewFormTypeRepository(client, cfg.FormTypesTable)
}

// ProvideFormTemplateRepository creates a form template repository
func ProvideFormTemplateRepository(client *awsdynamodb.Client, cfg *config.Config) ports.FormTemplateRepository {
	return dynamodb.NewFormTemplateRepository(client, cfg.FormTemplatesTable)
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, cfg.UsersTable, logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the CloudWatch metrics recorder
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector("seds")
}

// ProvideMetricsRecorder fans business metrics out to CloudWatch and Prometheus
func ProvideMetricsRecorder(metrics *observability.Metrics, collector *observability.Collector) ports.MetricsRecorder {
	return &businessMetrics{cloudwatch: metrics, collector: collector}
}

type businessMetrics struct {
	cloudwatch *observability.Metrics
	collector  *observability.Collector
}

func (m *businessMetrics) RecordBusinessMetric(ctx context.Context, name string, value float64, dims map[string]string) {
	m.cloudwatch.RecordBusinessMetric(ctx, name, value, dims)
	m.collector.CountBusinessEvent(name, dims["Form"], value)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	name := cfg.LambdaFunctionName
	if name == "" {
		name = cfg.Stage + "-seds-api"
	}
	return observability.NewTracer(name)
}

// ProvideInMemoryCache creates the process-local cache
func ProvideInMemoryCache() (*InMemoryCache, func()) {
	cache := NewInMemoryCache(time.Minute)
	return cache, cache.Stop
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	answers ports.AnswerRepository,
	forms ports.StateFormRepository,
	users ports.UserRepository,
	publisher ports.EventPublisher,
	recorder ports.MetricsRecorder,
	rules domainconfig.Source,
	collector *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(commandMetrics{collector}),
	)

	err := commandhandlers.Register(
		commandBus,
		commandhandlers.NewSaveAnswerHandler(answers, forms, publisher, recorder, rules, logger),
		commandhandlers.NewFormStatusHandler(forms, publisher, recorder, rules, logger),
		commandhandlers.NewUserHandler(users, publisher, logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	answers ports.AnswerRepository,
	questions ports.QuestionRepository,
	forms ports.StateFormRepository,
	formTypes ports.FormTypeRepository,
	templates ports.FormTemplateRepository,
	users ports.UserRepository,
	rules domainconfig.Source,
	cache *InMemoryCache,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.NewLoggingMiddleware(logger),
		querybus.NewMetricsMiddleware(queryMetrics{collector}),
		querybus.NewCachingMiddleware(cache, cfg.CacheTTL),
	)

	err := queryhandlers.Register(
		queryBus,
		queryhandlers.NewFormQueryHandler(answers, questions, forms, rules, logger),
		queryhandlers.NewCatalogQueryHandler(formTypes, templates),
		queryhandlers.NewUserQueryHandler(users),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideConfirmationStore picks where pending confirmations live. API
// Gateway may route the request and the confirmation of one exchange to
// different Lambda instances, so Lambda keeps them in DynamoDB.
func ProvideConfirmationStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConfirmationStore {
	if cfg.IsLambda {
		return dynamodb.NewConfirmationStore(client, cfg.ConfirmationsTable, logger)
	}
	return memory.NewConfirmationStore()
}

// ProvideConfirmationService creates the confirmation exchange
func ProvideConfirmationService(store ports.ConfirmationStore, commandBus *bus.CommandBus, cfg *config.Config, logger *zap.Logger) *services.ConfirmationService {
	return services.NewConfirmationService(store, commandBus, cfg.ConfirmationTTL, logger).
		Handle(commands.ActionSetUserActive, services.JSONDecoder[commands.SetUserActiveCommand]())
}

// ProvideMissingAnswersScanner creates the missing answers scanner
func ProvideMissingAnswersScanner(
	forms ports.StateFormRepository,
	answers ports.AnswerRepository,
	rules domainconfig.Source,
	logger *zap.Logger,
) *services.MissingAnswersScanner {
	return services.NewMissingAnswersScanner(forms, answers, rules, logger)
}

// ProvideJWTValidator creates the token validator. A Lambda without signing
// keys relies on the API Gateway authorizer alone and gets no validator.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.IsLambda && cfg.JWTSecret == "" && cfg.JWTPublicKeyPEM == "" {
		return nil, nil
	}

	var audience []string
	if cfg.JWTAudience != "" {
		audience = []string{cfg.JWTAudience}
	}

	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: cfg.JWTSigningMethod,
		PublicKey:     cfg.JWTPublicKeyPEM,
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      audience,
	})
}

// RateLimiters groups the per-IP and per-user request limiters
type RateLimiters struct {
	IP   auth.RateLimiter
	User auth.RateLimiter
}

// ProvideRateLimiters creates the request limiters. Lambda instances do not
// share memory, so they count in DynamoDB when a table is configured.
func ProvideRateLimiters(client *awsdynamodb.Client, cfg *config.Config) RateLimiters {
	if cfg.IsLambda && cfg.RateLimitTable != "" {
		return RateLimiters{
			IP:   auth.NewDistributedRateLimiter(client, cfg.RateLimitTable, cfg.IPRateLimit, time.Minute, "ip"),
			User: auth.NewDistributedRateLimiter(client, cfg.RateLimitTable, cfg.UserRateLimit, time.Minute, "user"),
		}
	}

	return RateLimiters{
		IP:   auth.NewIPRateLimiter(cfg.IPRateLimit),
		User: auth.NewUserRateLimiter(cfg.UserRateLimit),
	}
}

// ProvideAuthenticator creates the HTTP authentication middleware. Only a
// Lambda sits behind the API Gateway authorizer, so only it trusts the
// gateway's user headers.
func ProvideAuthenticator(validator *auth.JWTValidator, limiters RateLimiters, cfg *config.Config, logger *zap.Logger) *middleware.Authenticator {
	return middleware.NewAuthenticator(validator, limiters.IP, limiters.User, cfg.IsLambda, logger)
}

// commandMetrics adapts the collector to the command bus metrics interface
type commandMetrics struct {
	collector *observability.Collector
}

func (m commandMetrics) StartTimer(metric, label string) bus.Timer {
	return &collectorTimer{collector: m.collector, metric: metric, label: label, start: time.Now()}
}

func (m commandMetrics) Increment(metric, label string) {
	m.collector.Increment(metric, label)
}

// queryMetrics adapts the collector to the query bus metrics interface
type queryMetrics struct {
	collector *observability.Collector
}

func (m queryMetrics) StartTimer(metric, label string) querybus.Timer {
	return &collectorTimer{collector: m.collector, metric: metric, label: label, start: time.Now()}
}

func (m queryMetrics) Increment(metric, label string) {
	m.collector.Increment(metric, label)
}

type collectorTimer struct {
	collector *observability.Collector
	metric    string
	label     string
	start     time.Time
}

func (t *collectorTimer) Stop() {
	t.collector.Observe(t.metric, t.label, time.Since(t.start))
}
