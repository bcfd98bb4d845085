package database_test

import (
	"testing"

	"github.com/alexarts74/trip-indo/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolStatsReportAdapter(t *testing.T) {
	// 空配置在非serverless环境下落到local实现
	db := database.GetDatabase(database.DatabaseConfig{})
	require.NoError(t, db.HealthCheck())

	stats := database.GetConnectionStats()
	assert.Equal(t, "connected", stats["status"])
	assert.Equal(t, "local", stats["adapter"])
}
