package providers

import (
	"creatorstats/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: structures.StorageConfig{
			Driver: "file",
			Path:   "/tmp/creatorstats.db",
		},
		Quota: structures.QuotaConfig{
			DailyMax:        4,
			MinInterval:     6 * time.Hour,
			ProbeSkipWindow: 5 * time.Minute,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Collection: structures.CollectionConfig{
			Enabled:       true,
			CheckInterval: time.Hour,
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_UnknownStorageDriver(t *testing.T) {
	c := validConfig()
	c.Storage.Driver = "redis"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_StoragePathRequired(t *testing.T) {
	c := validConfig()
	c.Storage.Path = ""
	assert.Error(t, NewCnfValidator(c).Validate())

	c.Storage.Driver = "memory"
	assert.NoError(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroDailyMax(t *testing.T) {
	c := validConfig()
	c.Quota.DailyMax = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_NegativeInterval(t *testing.T) {
	c := validConfig()
	c.Quota.MinInterval = -time.Second
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_CollectionInterval(t *testing.T) {
	c := validConfig()
	c.Collection.CheckInterval = 0
	assert.Error(t, NewCnfValidator(c).Validate())

	c.Collection.Enabled = false
	assert.NoError(t, NewCnfValidator(c).Validate())
}
