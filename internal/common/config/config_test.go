package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "RESTAURANT_DB_PASSWORD", "RESTAURANT_RABBITMQ_PASSWORD"} {
		t.Setenv(k, "")
	}
}

func TestParseDefaultsWhenEmpty(t *testing.T) {
	clearEnv(t)
	a, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if !a.Restaurant.TaxRate.Equal(decimal.RequireFromString("0.10")) {
		t.Errorf("TaxRate = %s, want 0.10", a.Restaurant.TaxRate)
	}
	if !a.Restaurant.Seed || a.Restaurant.ReleaseTablesOnClose {
		t.Errorf("Seed=%v ReleaseTablesOnClose=%v, want true false", a.Restaurant.Seed, a.Restaurant.ReleaseTablesOnClose)
	}
	if a.Session.Backend != SessionFile || a.Rabbit.Exchange != "notifications_fanout" {
		t.Errorf("defaults not applied: %+v %+v", a.Session, a.Rabbit)
	}
	if len(a.Accounts) != 5 {
		t.Errorf("Accounts len = %d, want 5", len(a.Accounts))
	}
	if a.Assistant.Timeout != 30*time.Second {
		t.Errorf("Assistant.Timeout = %v, want 30s", a.Assistant.Timeout)
	}
}

func TestParseYaml(t *testing.T) {
	clearEnv(t)
	raw := strings.TrimSpace(`
app:
  name: Trattoria
  tax_rate: "0.2"
  release_tables_on_close: true
  seed: false
session:
  backend: postgres
database:
  host: db
  user: u
  database: restaurant_db
assistant:
  timeout: 5s
accounts:
  - username: anna
    password: pw
    full_name: Anna
    role: STAFF
`)
	a, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Restaurant.Name != "Trattoria" || !a.Restaurant.ReleaseTablesOnClose || a.Restaurant.Seed {
		t.Errorf("Restaurant = %+v", a.Restaurant)
	}
	if !a.Restaurant.TaxRate.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("TaxRate = %s, want 0.2", a.Restaurant.TaxRate)
	}
	if a.Database.Port != 5432 || a.Database.Host != "db" {
		t.Errorf("Database = %+v", a.Database)
	}
	if a.Assistant.Timeout != 5*time.Second {
		t.Errorf("Assistant.Timeout = %v, want 5s", a.Assistant.Timeout)
	}
	if len(a.Accounts) != 1 || a.Accounts[0].Username != "anna" {
		t.Errorf("Accounts = %+v", a.Accounts)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"bad tax":          "app:\n  tax_rate: abc\n",
		"tax too high":     "app:\n  tax_rate: \"1.5\"\n",
		"unknown backend":  "session:\n  backend: redis\n",
		"postgres no host": "session:\n  backend: postgres\n",
		"mq no host":       "notifications:\n  enabled: true\n",
		"temperature":      "assistant:\n  temperature: 3\n",
		"duplicate user":   "accounts:\n  - {username: a, role: STAFF}\n  - {username: a, role: ADMIN}\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("%s: Parse() error = nil, want error", name)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("RESTAURANT_DB_PASSWORD", "secret")
	a, err := Parse([]byte("database:\n  password: plain\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Assistant.APIKey != "k-123" || a.Database.Pass != "secret" {
		t.Errorf("env overrides not applied: key=%q pass=%q", a.Assistant.APIKey, a.Database.Pass)
	}
}

func TestDefaultAppliesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("RESTAURANT_RABBITMQ_PASSWORD", "mq-secret")
	a := Default()
	if a.Assistant.APIKey != "k-123" || a.Rabbit.Pass != "mq-secret" {
		t.Errorf("Default() key=%q mq pass=%q, want k-123 mq-secret", a.Assistant.APIKey, a.Rabbit.Pass)
	}
	if !a.Restaurant.TaxRate.Equal(decimal.RequireFromString("0.10")) {
		t.Errorf("Default() TaxRate = %s, want 0.10", a.Restaurant.TaxRate)
	}
}

func TestAssistantTemperature(t *testing.T) {
	clearEnv(t)
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 0.7},
		{"assistant:\n  temperature: 0\n", 0},
		{"assistant:\n  temperature: 1.2\n", 1.2},
	}
	for _, tc := range cases {
		a, err := Parse([]byte(tc.raw))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tc.raw, err)
		}
		if got := *a.Assistant.Temperature; got != tc.want {
			t.Errorf("Parse(%q) Temperature = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestLoadExampleConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join("..", "..", "..", "deploy", "config.example.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("example config not present")
	}
	a, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", path, err)
	}
	if !a.Tracking.Enabled || a.Tracking.Port != 3002 {
		t.Errorf("Tracking = %+v", a.Tracking)
	}
}
