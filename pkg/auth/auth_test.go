package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newGenerator(t *testing.T) *JWTGenerator {
	t.Helper()
	g, err := NewJWTGenerator(JWTGeneratorConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        "seds",
		Audience:      []string{"seds-api"},
		ExpiryTime:    time.Hour,
	})
	require.NoError(t, err)
	return g
}

func newValidator(t *testing.T, secret string) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        "seds",
		Audience:      []string{"seds-api"},
	})
	require.NoError(t, err)
	return v
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := newGenerator(t).GenerateToken(UserContext{
		UserID:   "sub-123",
		Username: "jdoe",
		Email:    "jdoe@example.gov",
		Roles:    []string{RoleState},
		States:   []string{"AL"},
	})
	require.NoError(t, err)

	claims, err := newValidator(t, testSecret).ValidateToken("Bearer " + token)
	require.NoError(t, err)

	user := claims.UserContext()
	assert.Equal(t, "sub-123", user.UserID)
	assert.Equal(t, "jdoe", user.Username)
	assert.Equal(t, []string{"AL"}, user.States)
	assert.True(t, user.CanEditState("AL"))
}

func TestValidateTokenErrors(t *testing.T) {
	g := newGenerator(t)
	valid, err := g.GenerateToken(UserContext{UserID: "sub-123"})
	require.NoError(t, err)

	expiredGen := newGenerator(t)
	expiredGen.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredGen.GenerateToken(UserContext{UserID: "sub-123"})
	require.NoError(t, err)

	noSubject, err := g.GenerateToken(UserContext{})
	require.NoError(t, err)

	tests := []struct {
		name      string
		validator *JWTValidator
		token     string
		want      error
	}{
		{"missing", newValidator(t, testSecret), "", ErrMissingToken},
		{"bearer only", newValidator(t, testSecret), "Bearer ", ErrMissingToken},
		{"wrong secret", newValidator(t, "other"), valid, ErrInvalidSignature},
		{"expired", newValidator(t, testSecret), expired, ErrExpiredToken},
		{"garbage", newValidator(t, testSecret), "not.a.token", ErrInvalidToken},
		{"no subject", newValidator(t, testSecret), noSubject, ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.validator.ValidateToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidatorRejectsWrongAudience(t *testing.T) {
	token, err := newGenerator(t).GenerateToken(UserContext{UserID: "sub-123"})
	require.NoError(t, err)

	v, err := NewJWTValidator(JWTConfig{SigningMethod: "HS256", SecretKey: testSecret, Audience: []string{"other-api"}})
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestNewJWTValidatorConfig(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{SigningMethod: "HS256"})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SigningMethod: "RS256"})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SigningMethod: "none", SecretKey: "x"})
	assert.Error(t, err)
}

func TestCanEditState(t *testing.T) {
	tests := []struct {
		name  string
		user  UserContext
		state string
		want  bool
	}{
		{"admin any state", UserContext{Roles: []string{RoleAdmin}}, "MD", true},
		{"business any state", UserContext{Roles: []string{RoleBusiness}}, "MD", true},
		{"state user own state", UserContext{Roles: []string{RoleState}, States: []string{"md"}}, "MD", true},
		{"state user other state", UserContext{Roles: []string{RoleState}, States: []string{"AL"}}, "MD", false},
		{"no role", UserContext{States: []string{"MD"}}, "MD", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.CanEditState(tt.state))
		})
	}
}

func TestUserInContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "1", Username: "jdoe"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", user.DisplayName())
	assert.Equal(t, "2", UserContext{UserID: "2"}.DisplayName())
}

func TestSlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewSlidingWindowLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(61 * time.Second)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok, "window slides")

	now = now.Add(2 * time.Minute)
	l.Prune()
	assert.Empty(t, l.windows)
}

type fakeCounterStore struct {
	count  int
	limit  int
	err    error
	lastPK string
}

func (f *fakeCounterStore) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastPK = in.Key["PK"].(*types.AttributeValueMemberS).Value
	if f.err != nil {
		return nil, f.err
	}
	if f.count >= f.limit {
		return nil, &types.ConditionalCheckFailedException{}
	}
	f.count++
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: f.lastPK},
		"Count": &types.AttributeValueMemberN{Value: "1"},
	}}, nil
}

func (f *fakeCounterStore) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.count = 0
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDistributedRateLimiter(t *testing.T) {
	ctx := context.Background()
	store := &fakeCounterStore{limit: 1}
	l := NewDistributedRateLimiter(store, "rate-limits", 1, time.Minute, "IP")
	l.now = func() time.Time { return time.Unix(120, 0) }

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "RATELIMIT#IP#10.0.0.1#120", store.lastPK)

	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Reset(ctx, "10.0.0.1"))
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)

	store.err = errors.New("throttled")
	ok, err = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "store failures fail open")
	assert.Error(t, err)

	ok, err = NewDistributedRateLimiter(nil, "", 1, time.Minute, "IP").Allow(ctx, "x")
	assert.True(t, ok)
	assert.NoError(t, err)
}
