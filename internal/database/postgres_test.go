package database

import (
	"testing"
	"time"

	"github.com/ruralpay/invoices/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetConfig_ReadsBoundEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("DATABASE_NAME", "dashboard")

	config.Load()
	cfg := GetConfig()

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "dashboard", cfg.Name)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}
