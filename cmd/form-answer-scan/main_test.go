package main

import (
	"os"
	"path/filepath"
	"testing"

	"seds-backend/application/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	report := &services.MissingAnswersReport{
		Scanned:       3,
		Missing:       []string{"AK-2021-1-21E, jdoe", "AL-2021-1-64.ECI, asmith"},
		MissingNonECI: []string{"AK-2021-1-21E, jdoe"},
	}

	files, err := writeReport(dir, "main", report)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "main-missing.txt"), files[0])
	assert.Equal(t, filepath.Join(dir, "main-missing-non-eci.txt"), files[1])

	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "AK-2021-1-21E, jdoe\nAL-2021-1-64.ECI, asmith\n", string(body))

	body, err = os.ReadFile(files[1])
	require.NoError(t, err)
	assert.Equal(t, "AK-2021-1-21E, jdoe\n", string(body))
}

func TestWriteReportEmpty(t *testing.T) {
	dir := t.TempDir()
	files, err := writeReport(dir, "local", &services.MissingAnswersReport{})
	require.NoError(t, err)

	for _, f := range files {
		body, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.Empty(t, body)
	}
}

func TestScanConfigLocal(t *testing.T) {
	t.Setenv("STAGE", "")
	t.Setenv("DYNAMODB_ENDPOINT", "")
	t.Setenv("ENVIRONMENT", "development")
	scanLocal, scanStage, scanRules = true, "", ""
	defer func() { scanLocal = false }()

	cfg, err := scanConfig()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Stage)
	assert.Equal(t, localEndpoint, cfg.DynamoDBEndpoint)
	assert.Equal(t, "local-state-forms", cfg.StateFormsTable)
	assert.Equal(t, "local-form-answers", cfg.AnswersTable)
}
