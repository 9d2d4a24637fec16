package main

import (
	"context"
	"log"
	"strings"
	"time"

	"seds-backend/infrastructure/config"
	"seds-backend/infrastructure/di"
	"seds-backend/interfaces/http/rest"
	"seds-backend/interfaces/http/rest/middleware"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container

	coldStart     = true
	coldStartTime time.Time
)

// setup builds the container and router once per execution environment
func setup() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.IsLambda = true

	// The container lives as long as the execution environment, so its
	// cleanup never runs.
	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler := rest.NewRouter(rest.Dependencies{
		CommandBus:     container.CommandBus,
		QueryBus:       container.QueryBus,
		Confirmations:  container.Confirmations,
		Authenticator:  container.Authenticator,
		Collector:      container.Collector,
		Tracer:         container.Tracer,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         container.Logger,
	}).Setup()

	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("function", cfg.LambdaFunctionName),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	applyAuthorizerContext(req.Headers, req.RequestContext.Authorizer)

	container.Logger.Debug("Lambda received request",
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("request_id", req.RequestContext.RequestID),
	)

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Lambda-Request-ID"] = req.RequestContext.RequestID
	}
	resp.Headers["X-Lambda-Stage"] = req.RequestContext.Stage

	if resp.StatusCode >= 500 {
		container.Logger.Error("Lambda error response",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", resp.Body),
		)
	}

	return resp, err
}

// applyAuthorizerContext replaces any client supplied user headers with the
// claims the API Gateway JWT authorizer verified. Without authorizer claims
// the request must carry its own token.
func applyAuthorizerContext(headers map[string]string, authorizer *events.APIGatewayV2HTTPRequestContextAuthorizerDescription) {
	for _, h := range []string{
		middleware.HeaderGatewayAuthorized,
		middleware.HeaderUserID,
		middleware.HeaderUsername,
		middleware.HeaderUserEmail,
		middleware.HeaderUserRoles,
		middleware.HeaderUserStates,
	} {
		for k := range headers {
			if strings.EqualFold(k, h) {
				delete(headers, k)
			}
		}
	}

	if authorizer == nil || authorizer.JWT == nil || authorizer.JWT.Claims["sub"] == "" {
		return
	}
	claims := authorizer.JWT.Claims

	username := claims["username"]
	if username == "" {
		username = claims["cognito:username"]
	}

	headers[middleware.HeaderGatewayAuthorized] = "true"
	headers[middleware.HeaderUserID] = claims["sub"]
	headers[middleware.HeaderUsername] = username
	headers[middleware.HeaderUserEmail] = claims["email"]
	headers[middleware.HeaderUserRoles] = claimList(claims["roles"])
	headers[middleware.HeaderUserStates] = claimList(claims["states"])
}

// claimList normalizes an authorizer claim array. API Gateway flattens
// arrays to "[a b]".
func claimList(v string) string {
	v = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(v), "["), "]")
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == ','
	}), ",")
}

func main() {
	setup()
	lambda.Start(Handler)
}
