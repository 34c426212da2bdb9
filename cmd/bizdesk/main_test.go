package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/bizdesk/internal/config"
	"github.com/diewo77/bizdesk/internal/db"
	"github.com/diewo77/bizdesk/internal/lineitems"
	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/storage"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "bizdesk dev\n", out)
}

func TestTotals(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		out, _, err := run(t, `{"items":[{"quantity":2,"rate":10},{"quantity":"1","rate":"5"}]}`, "totals", "-")
		require.NoError(t, err)
		var got struct {
			Items    []lineitems.LineItem `json:"items"`
			Subtotal decimal.Decimal      `json:"subtotal"`
			Total    decimal.Decimal      `json:"total"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Items, 2)
		assert.True(t, got.Items[0].Amount.Equal(decimal.NewFromInt(20)))
		assert.True(t, got.Total.Equal(decimal.NewFromInt(25)), got.Total.String())
	})

	t.Run("file with tax rate", func(t *testing.T) {
		path := writeFile(t, "doc.json", `{"items":[{"quantity":1,"rate":100}],"discount":10,"tax_rate":"0.2"}`)
		out, _, err := run(t, "", "totals", path)
		require.NoError(t, err)
		var got lineitems.Totals
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.True(t, got.Tax.Equal(decimal.NewFromInt(18)), got.Tax.String())
		assert.True(t, got.Total.Equal(decimal.NewFromInt(108)), got.Total.String())
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, _, err := run(t, `{"items":[{"quantity":-1,"rate":10}]}`, "totals", "-")
		assert.ErrorIs(t, err, lineitems.ErrInvalidQuantity)
	})

	t.Run("number out of range", func(t *testing.T) {
		_, _, err := run(t, `{"items":[{"quantity":1e2000000000,"rate":1}]}`, "totals", "-")
		assert.ErrorIs(t, err, lineitems.ErrInvalidQuantity)
	})

	t.Run("bad discount", func(t *testing.T) {
		_, _, err := run(t, `{"items":[],"discount":"lots"}`, "totals", "-")
		assert.ErrorContains(t, err, "discount")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := run(t, "", "totals", filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestMatch(t *testing.T) {
	out, _, err := run(t, "", "match", "open", "invoices", "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "invoices\tOpening invoices\texact\t"), out)

	out, _, err = run(t, "", "match", "--locale", "es", "mostrar", "facturas")
	require.NoError(t, err)
	assert.Contains(t, out, "Abriendo facturas")

	out, _, err = run(t, "", "match", "show", "invoiecs")
	require.NoError(t, err)
	assert.Contains(t, out, "\tfuzzy\t")

	_, errOut, err := run(t, "", "match", "xyzzy")
	assert.ErrorIs(t, err, errNoMatch)
	assert.Contains(t, errOut, "Sorry")
}

func TestMatch_CustomTable(t *testing.T) {
	table := writeFile(t, "voice.yaml", `commands:
  - action: reports
    patterns: [reports, informes]
    responses: {en-US: Opening reports}
`)
	cfg := writeFile(t, "bizdesk.yaml", "voice:\n  table: "+table+"\n")
	out, _, err := run(t, "", "match", "--config", cfg, "--locale", "fr", "informes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "reports\tOpening reports\t"), out)

	_, _, err = run(t, "", "match", "--config", cfg, "invoices")
	assert.ErrorIs(t, err, errNoMatch)
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := run(t, "", "match", "invoices", "--log-format", "xml")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, _, err = run(t, "", "match", "invoices", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSeedAndMigrate_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "bizdesk.db")
	cfg := writeFile(t, "bizdesk.yaml", "database:\n  driver: sqlite\n  dsn: "+dsn+"\nlog:\n  level: error\n")

	out, _, err := run(t, "", "migrate", "up", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "migrations applied\n", out)

	for range 2 {
		out, _, err = run(t, "", "seed", "--config", cfg)
		require.NoError(t, err)
		assert.Equal(t, "plans seeded\n", out)
	}

	gdb, err := db.Open(context.Background(), db.Options{Driver: "sqlite", DSN: dsn, Retries: 1})
	require.NoError(t, err)
	var count int64
	require.NoError(t, gdb.Model(&models.Plan{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	_, _, err = run(t, "", "migrate", "down", "--config", cfg)
	assert.ErrorIs(t, err, errNoSQLMigrations)
	_, _, err = run(t, "", "migrate", "version", "--config", cfg)
	assert.ErrorIs(t, err, errNoSQLMigrations)
}

func TestBlobStore(t *testing.T) {
	a := &app{cfg: &config.Config{Storage: config.StorageConfig{Driver: "local", Dir: t.TempDir()}}}
	store, err := a.blobStore()
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, store)

	a.cfg.Storage.Driver = "ftp"
	_, err = a.blobStore()
	assert.Error(t, err)
}
