package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	domainconfig "seds-backend/domain/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STAGE", "main")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "main-form-answers", cfg.AnswersTable)
	assert.Equal(t, "main-form-questions", cfg.QuestionsTable)
	assert.Equal(t, "main-state-forms", cfg.StateFormsTable)
	assert.Equal(t, "main-forms", cfg.FormTypesTable)
	assert.Equal(t, "main-form-templates", cfg.FormTemplatesTable)
	assert.Equal(t, "main-auth-user", cfg.UsersTable)
	assert.Equal(t, "main-confirmations", cfg.ConfirmationsTable)
	assert.Equal(t, 5*time.Minute, cfg.ConfirmationTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STAGE", "val")
	t.Setenv("FORM_ANSWERS_TABLE_NAME", "answers")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "seds-api")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "answers", cfg.AnswersTable)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsLambda)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid development", cfg: Config{Stage: "dev", Environment: "development", JWTSigningMethod: "HS256"}},
		{name: "bad signing method", cfg: Config{Stage: "dev", JWTSigningMethod: "none"}, wantErr: "JWT_SIGNING_METHOD"},
		{name: "production without secret", cfg: Config{Stage: "prod", Environment: "production", JWTSigningMethod: "HS256", EventBusName: "bus"}, wantErr: "JWT_SECRET"},
		{name: "production without key", cfg: Config{Stage: "prod", Environment: "production", JWTSigningMethod: "RS256", EventBusName: "bus"}, wantErr: "JWT_PUBLIC_KEY"},
		{name: "no stage", cfg: Config{JWTSigningMethod: "HS256"}, wantErr: "STAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func writeRules(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDomainRules(t *testing.T) {
	path := writeRules(t, t.TempDir(), "commit_ordinals: [\"01\"]\nsynthesized_ordinal: 7\nform_precision:\n  \"64.21E\": 1\n")

	rules, err := LoadDomainRules(path, "production")

	require.NoError(t, err)
	assert.Equal(t, []string{"01"}, rules.CommitOrdinals)
	assert.Equal(t, 7, rules.SynthesizedOrdinal)
	assert.Equal(t, 1, rules.PrecisionFor("64.21E"))
	assert.Equal(t, "&&&VARIABLE&&&", rules.LabelVariableToken)
}

func TestLoadDomainRulesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDomainRules(filepath.Join(dir, "missing.yaml"), "development")
	assert.ErrorContains(t, err, "failed to read")

	_, err = LoadDomainRules(writeRules(t, dir, "synthesized_ordinal: -1\n"), "development")
	assert.ErrorContains(t, err, "invalid domain config")

	rules, err := LoadDomainRules("", "development")
	require.NoError(t, err)
	assert.False(t, rules.EnableUncertifyNotification)
}

func TestRulesWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := writeRules(t, dir, "synthesized_ordinal: 5\n")

	w, err := NewRulesWatcher(path, "production", false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 5, w.Current().SynthesizedOrdinal)

	var notified int
	w.OnChange(func(r *domainconfig.DomainConfig) { notified = r.SynthesizedOrdinal })

	writeRules(t, dir, "synthesized_ordinal: 6\n")
	w.Reload()
	assert.Equal(t, 6, w.Current().SynthesizedOrdinal)
	assert.Equal(t, 6, notified)

	writeRules(t, dir, "label_variable_token: \"\"\n")
	w.Reload()
	assert.Equal(t, 6, w.Current().SynthesizedOrdinal)
}
