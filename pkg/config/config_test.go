package config

import (
	"time"

	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPopulatesGatewayDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 20, cfg.Gateway.MaxPerTurn)
	assert.Equal(t, 500, cfg.Gateway.MaxPerSession)
	assert.Equal(t, "medium", cfg.Gateway.ApprovalRiskThreshold)
	assert.False(t, cfg.Gateway.WorkspaceTrusted)
}

func TestDefaultPopulatesRunloopDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 200, cfg.Runloop.MaxTurns)
	assert.Equal(t, 0.85, cfg.Runloop.TrimThreshold)
	assert.Equal(t, 0.5, cfg.Runloop.RetentionPercent)
}

func TestDefaultPopulatesCacheDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 300*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
	assert.Empty(t, cfg.Cache.SnapshotPath)
}

func TestDefaultPopulatesMCPAndWebUIAsZeroValue(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.MCP.Servers)
	assert.Empty(t, cfg.WebUI.ListenAddr)
}

func TestDefaultPopulatesPatternDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.Pattern.ReliableMinUses)
	assert.Equal(t, 0.7, cfg.Pattern.ReliableMinSuccessRate)
	assert.Equal(t, 0.15, cfg.Pattern.ConvergenceVariance)
}
