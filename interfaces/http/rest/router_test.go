package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seds-backend/application/commands"
	"seds-backend/application/commands/bus"
	"seds-backend/application/queries"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/application/services"
	"seds-backend/domain/core/entities"
	"seds-backend/infrastructure/persistence/memory"
	"seds-backend/interfaces/http/rest/middleware"
	"seds-backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "router-test-secret"

type routerFixture struct {
	handler   http.Handler
	generator *auth.JWTGenerator
	saved     []commands.SaveAnswerCommand
	activated []commands.SetUserActiveCommand
	formActor auth.UserContext
}

func newRouterFixture(t *testing.T, trustGateway bool) *routerFixture {
	t.Helper()
	f := &routerFixture{}
	logger := zap.NewNop()

	qb := querybus.NewQueryBus()
	require.NoError(t, qb.Register(queries.ListFormTypesQuery{}, querybus.Typed(
		func(ctx context.Context, q queries.ListFormTypesQuery) ([]entities.FormType, error) {
			return []entities.FormType{{Form: "21E"}, {Form: "64.EC"}}, nil
		})))
	require.NoError(t, qb.Register(queries.GetFormQuery{}, querybus.Typed(
		func(ctx context.Context, q queries.GetFormQuery) (map[string]string, error) {
			f.formActor = q.Actor
			return map[string]string{"state_form": q.State + "-21E"}, nil
		})))
	require.NoError(t, qb.Register(queries.ListUsersQuery{}, querybus.Typed(
		func(ctx context.Context, q queries.ListUsersQuery) ([]entities.User, error) {
			return []entities.User{{UserID: "1"}, {UserID: "2"}, {UserID: "3"}}, nil
		})))

	cb := bus.NewCommandBus()
	require.NoError(t, cb.Register(commands.SaveAnswerCommand{}, bus.Typed(
		func(ctx context.Context, cmd commands.SaveAnswerCommand) (*commands.SaveAnswerResult, error) {
			f.saved = append(f.saved, cmd)
			return &commands.SaveAnswerResult{Committed: true}, nil
		})))
	require.NoError(t, cb.Register(commands.CreateUserCommand{}, bus.Typed(
		func(ctx context.Context, cmd commands.CreateUserCommand) (*entities.User, error) {
			return &entities.User{UserID: "42", Username: cmd.Username}, nil
		})))
	require.NoError(t, cb.Register(commands.SetUserActiveCommand{}, bus.Typed(
		func(ctx context.Context, cmd commands.SetUserActiveCommand) (*entities.User, error) {
			f.activated = append(f.activated, cmd)
			return &entities.User{UserID: cmd.UserID, IsActive: cmd.Active}, nil
		})))

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SigningMethod: "HS256", SecretKey: testSecret, Issuer: "seds"})
	require.NoError(t, err)
	f.generator, err = auth.NewJWTGenerator(auth.JWTGeneratorConfig{SigningMethod: "HS256", SecretKey: testSecret, Issuer: "seds", ExpiryTime: time.Hour})
	require.NoError(t, err)

	f.handler = NewRouter(Dependencies{
		CommandBus:    cb,
		QueryBus:      qb,
		Confirmations: services.NewConfirmationService(memory.NewConfirmationStore(), cb, time.Minute, logger).
			Handle(commands.ActionSetUserActive, services.JSONDecoder[commands.SetUserActiveCommand]()),
		Authenticator: middleware.NewAuthenticator(validator, nil, nil, trustGateway, logger),
		Logger:        logger,
	}).Setup()
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, body string, user *auth.UserContext) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := f.generator.GenerateToken(*user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var (
	stateUser = &auth.UserContext{UserID: "u-al", Username: "al.user", Roles: []string{auth.RoleState}, States: []string{"AL"}}
	adminUser = &auth.UserContext{UserID: "u-admin", Username: "admin", Roles: []string{auth.RoleAdmin}}
)

func TestRouter_HealthAndReady(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v2", rec.Header().Get("X-API-Version"))

	rec = f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	notReady := NewRouter(Dependencies{Logger: zap.NewNop(), Authenticator: middleware.NewAuthenticator(nil, nil, nil, false, zap.NewNop())}).Setup()
	rec = httptest.NewRecorder()
	notReady.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_SwaggerDocument(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/swagger", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v2", doc.BasePath)
	assert.Contains(t, doc.Paths, "/forms/{state}/{year}/{quarter}/{form}/answers/{answerEntry}")
	assert.Contains(t, doc.Paths, "/confirmations/{id}")

	rec = f.do(t, http.MethodGet, "/api/swagger?format=yaml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "basePath: /api/v2")
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/v2/form-types", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])

	req := httptest.NewRequest(http.MethodGet, "/api/v2/form-types", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_FormTypes(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/v2/form-types", "", stateUser)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 2)

	// v1 keeps the bare array
	rec = f.do(t, http.MethodGet, "/api/v1/form-types", "", stateUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-API-Deprecated"))
	var types []entities.FormType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	assert.Equal(t, "21E", types[0].Form)
}

func TestRouter_GetFormPassesActor(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/v2/forms/al/2021/1/21E", "", stateUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-al", f.formActor.UserID)
	assert.Equal(t, []string{"AL"}, f.formActor.States)

	rec = f.do(t, http.MethodGet, "/api/v2/forms/AL/20x1/1/21E", "", stateUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v2/forms/AL/2021/7/21E", "", stateUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SaveAnswer(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodPut, "/api/v2/forms/AL/2021/1/21E/answers/AL-2021-1-21E-0105-01",
		`{"values":[[1,2],[3,4]]}`, stateUser)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["data"].(map[string]interface{})["committed"])

	require.Len(t, f.saved, 1)
	assert.Equal(t, "AL-2021-1-21E", f.saved[0].StateForm)
	assert.Equal(t, "AL-2021-1-21E-0105-01", f.saved[0].AnswerEntry)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, f.saved[0].Values)
	assert.Equal(t, "al.user", f.saved[0].Actor.Username)

	rec = f.do(t, http.MethodPut, "/api/v2/forms/AL/2021/1/21E/answers/AL-2021-1-21E-0105-01",
		`{"values":[[1]],"extra":true}`, stateUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, f.saved, 1)
}

func TestRouter_UserAdministration(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/v2/users", "", stateUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v2/users?page=1&page_size=2", "", adminUser)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["data"], 2)
	pagination := body["meta"].(map[string]interface{})["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, true, pagination["has_next"])

	rec = f.do(t, http.MethodPost, "/api/v2/users",
		`{"username":"jdoe","role":"state","states":["AL"]}`, adminUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "User jdoe Added!", data["message"])
}

func TestRouter_ActivationNeedsConfirmation(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/v2/users/7/activation", `{"isActive":true}`, adminUser)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, f.activated)

	pending := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Are you sure you want to activate user 7?", pending["message"])
	id := pending["id"].(string)

	// only the requester may resolve it
	otherAdmin := &auth.UserContext{UserID: "u-admin-2", Roles: []string{auth.RoleAdmin}}
	rec = f.do(t, http.MethodPost, "/api/v2/confirmations/"+id, `{"confirmed":true}`, otherAdmin)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.activated)

	rec = f.do(t, http.MethodPost, "/api/v2/confirmations/"+id, `{"confirmed":true}`, adminUser)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.activated, 1)
	assert.Equal(t, "7", f.activated[0].UserID)
	assert.True(t, f.activated[0].Active)
	assert.Equal(t, adminUser.UserID, f.activated[0].Actor.UserID)

	rec = f.do(t, http.MethodPost, "/api/v2/confirmations/"+id, `{"confirmed":true}`, adminUser)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Len(t, f.activated, 1)
}

func TestRouter_GatewayHeaders(t *testing.T) {
	f := newRouterFixture(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/forms/AL/2021/1/21E", nil)
	req.Header.Set(middleware.HeaderGatewayAuthorized, "true")
	req.Header.Set(middleware.HeaderUserID, "gw-1")
	req.Header.Set(middleware.HeaderUsername, "gateway.user")
	req.Header.Set(middleware.HeaderUserRoles, "state")
	req.Header.Set(middleware.HeaderUserStates, "AL, AK")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gw-1", f.formActor.UserID)
	assert.Equal(t, []string{"AL", "AK"}, f.formActor.States)

	// without trust the headers are ignored
	untrusted := newRouterFixture(t, false)
	rec = httptest.NewRecorder()
	untrusted.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
