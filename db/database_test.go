package db

import (
	"path/filepath"
	"testing"

	"bygg_flow_app_go/models"

	"github.com/stretchr/testify/assert"
)

func TestInitializeAndMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bygg.db")

	err := Initialize(dbPath, "test")
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, Close())
		DB = nil
	}()

	err = AutoMigrate()
	assert.NoError(t, err)

	assert.True(t, DB.Migrator().HasTable(&models.Request{}))
	assert.True(t, DB.Migrator().HasTable(&models.Document{}))
}

func TestAutoMigrateRequiresInitialize(t *testing.T) {
	prev := DB
	DB = nil
	defer func() { DB = prev }()

	assert.Error(t, AutoMigrate())
}
