package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanCommit(t *testing.T) {
	cfg := DefaultDomainConfig()

	assert.True(t, cfg.CanCommit("01"))
	assert.True(t, cfg.CanCommit("04"))
	assert.False(t, cfg.CanCommit("02"))
	assert.False(t, cfg.CanCommit("05"))
	// Substring matches must not pass the gate.
	assert.False(t, cfg.CanCommit("1"))
	assert.False(t, cfg.CanCommit("010"))
}

func TestIsSynthesized(t *testing.T) {
	cfg := DefaultDomainConfig()

	assert.True(t, cfg.IsSynthesized("05"))
	assert.True(t, cfg.IsSynthesized("5"))
	assert.False(t, cfg.IsSynthesized("01"))
	assert.False(t, cfg.IsSynthesized("x5"))

	cfg.SynthesizedOrdinal = 0
	assert.False(t, cfg.IsSynthesized("00"))
}

func TestPrecisionFor(t *testing.T) {
	cfg := DefaultDomainConfig()
	cfg.DefaultPrecision = 1
	cfg.FormPrecision["GRE"] = 2

	assert.Equal(t, 2, cfg.PrecisionFor("GRE"))
	assert.Equal(t, 1, cfg.PrecisionFor("21E"))
}

func TestIsECIForm(t *testing.T) {
	cfg := DefaultDomainConfig()

	assert.True(t, cfg.IsECIForm("AL-2021-1-64.ECI"))
	assert.False(t, cfg.IsECIForm("AL-2021-1-21E"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DomainConfig)
		wantErr bool
	}{
		{"defaults", func(*DomainConfig) {}, false},
		{"negative precision", func(c *DomainConfig) { c.DefaultPrecision = -1 }, true},
		{"negative form precision", func(c *DomainConfig) { c.FormPrecision["21E"] = -2 }, true},
		{"blank ordinal", func(c *DomainConfig) { c.CommitOrdinals = []string{"01", " "} }, true},
		{"missing token", func(c *DomainConfig) { c.LabelVariableToken = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDomainConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDomainConfig(t *testing.T) {
	assert.False(t, LoadDomainConfig("development").EnableUncertifyNotification)
	assert.True(t, LoadDomainConfig("production").EnableUncertifyNotification)
	assert.Equal(t, []string{"01", "04"}, LoadDomainConfig("staging").CommitOrdinals)
}
