package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelsearch/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEARCH_PAGE_SIZE", "")
	t.Setenv("SEARCH_FALLBACK_WIDEN_DAYS", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Search.PageSize)
	assert.Equal(t, 7, cfg.Search.FallbackWidenDay)
	assert.Equal(t, "SEARCH_NO_RESULTS", cfg.Notify.RedisChannel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero page size", map[string]string{"SEARCH_PAGE_SIZE": "0"}},
		{"negative widen", map[string]string{"SEARCH_FALLBACK_WIDEN_DAYS": "-1"}},
		{"telegram without chat", map[string]string{"TELEGRAM_BOT_TOKEN": "abc", "TELEGRAM_CHAT_ID": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("X_FLAG", "true")
	assert.True(t, getEnvAsBool("X_FLAG", false))

	t.Setenv("X_FLAG", "not-a-bool")
	assert.True(t, getEnvAsBool("X_FLAG", true))
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "inv", SSLMode: "disable"}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=inv sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.GetPostgreSQLDSN())
}

func TestLoadSchemaWithoutFile(t *testing.T) {
	schema, err := LoadSchema("")
	require.NoError(t, err)
	for _, st := range model.ServiceTypes {
		_, ok := schema.Category(st)
		assert.True(t, ok, "missing category %s", st)
	}
}

func TestLoadSchemaOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	doc := `
yachts:
  table: charter_yachts
  fields:
    location: [home_port]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	schema, err := LoadSchema(path)
	require.NoError(t, err)

	yachts, _ := schema.Category(model.ServiceYachts)
	assert.Equal(t, "charter_yachts", yachts.Table)
	assert.Equal(t, []string{"home_port"}, yachts.Columns(model.FieldLocation))
	// untouched fields keep their built-in aliases
	assert.Equal(t, model.DefaultSchema()[model.ServiceYachts].Columns(model.FieldPrice), yachts.Columns(model.FieldPrice))
}

func TestMergeSchemaErrors(t *testing.T) {
	_, err := MergeSchema(model.DefaultSchema(), []byte("submarines:\n  table: subs\n"))
	assert.Error(t, err)

	_, err = MergeSchema(model.DefaultSchema(), []byte("jets:\n  fields:\n    price: []\n"))
	assert.Error(t, err)

	_, err = LoadSchema(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
