package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	SessionFile     = "file"
	SessionPostgres = "postgres"
	SessionMemory   = "memory"
)

type DB struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	Name string `yaml:"database"`
}

type MQ struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Pass     string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

type Restaurant struct {
	Name                 string          `yaml:"name"`
	TaxRate              decimal.Decimal `yaml:"-"`
	TaxRateRaw           string          `yaml:"tax_rate"`
	ReleaseTablesOnClose bool            `yaml:"release_tables_on_close"`
	Seed                 bool            `yaml:"seed"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Session struct {
	Backend string `yaml:"backend"` // file | postgres | memory
	Path    string `yaml:"path"`
}

type Notifications struct {
	Enabled bool `yaml:"enabled"`
	Buffer  int  `yaml:"buffer"`
}

type Tracking struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type Assistant struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature *float64      `yaml:"temperature"` // nil means unset; 0 is a valid setting
	Timeout     time.Duration `yaml:"timeout"`
	Endpoint    string        `yaml:"endpoint"`
}

type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
	TableID  string `yaml:"table_id"`
}

type App struct {
	Restaurant    Restaurant    `yaml:"app"`
	Log           Log           `yaml:"log"`
	Session       Session       `yaml:"session"`
	Database      DB            `yaml:"database"`
	Rabbit        MQ            `yaml:"rabbitmq"`
	Notifications Notifications `yaml:"notifications"`
	Tracking      Tracking      `yaml:"tracking"`
	Assistant     Assistant     `yaml:"assistant"`
	Accounts      []Account     `yaml:"accounts"`
}

// Default is what an empty config file resolves to.
func Default() App {
	var a App
	a.Restaurant.Seed = true
	a.applyDefaults()
	a.applyEnv()
	_ = a.validate()
	return a
}

func Load(path string) (App, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (App, error) {
	a := App{Restaurant: Restaurant{Seed: true}}
	if err := yaml.Unmarshal(b, &a); err != nil {
		return App{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	a.applyDefaults()
	a.applyEnv()
	if err := a.validate(); err != nil {
		return App{}, err
	}
	return a, nil
}

func (a *App) applyDefaults() {
	if a.Restaurant.Name == "" {
		a.Restaurant.Name = "Gourmet Kitchen"
	}
	if a.Restaurant.TaxRateRaw == "" {
		a.Restaurant.TaxRateRaw = "0.10"
	}
	if a.Log.Level == "" {
		a.Log.Level = "info"
	}
	if a.Log.File == "" {
		a.Log.File = ".restaurant/logs/restaurant.log"
	}
	if a.Session.Backend == "" {
		a.Session.Backend = SessionFile
	}
	if a.Session.Path == "" {
		a.Session.Path = ".restaurant/session"
	}
	if a.Database.Port == 0 {
		a.Database.Port = 5432
	}
	if a.Rabbit.Port == 0 {
		a.Rabbit.Port = 5672
	}
	if a.Rabbit.VHost == "" {
		a.Rabbit.VHost = "/"
	}
	if a.Rabbit.Exchange == "" {
		a.Rabbit.Exchange = "notifications_fanout"
	}
	if a.Rabbit.Queue == "" {
		a.Rabbit.Queue = "notifications_queue"
	}
	if a.Notifications.Buffer <= 0 {
		a.Notifications.Buffer = 256
	}
	if a.Tracking.Port == 0 {
		a.Tracking.Port = 3002
	}
	if a.Assistant.Model == "" {
		a.Assistant.Model = "gemini-3-flash-preview"
	}
	if a.Assistant.Temperature == nil {
		t := 0.7
		a.Assistant.Temperature = &t
	}
	if a.Assistant.Timeout <= 0 {
		a.Assistant.Timeout = 30 * time.Second
	}
	if len(a.Accounts) == 0 {
		a.Accounts = DefaultAccounts()
	}
}

func (a *App) applyEnv() {
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(k); v != "" && a.Assistant.APIKey == "" {
			a.Assistant.APIKey = v
		}
	}
	if v := os.Getenv("RESTAURANT_DB_PASSWORD"); v != "" {
		a.Database.Pass = v
	}
	if v := os.Getenv("RESTAURANT_RABBITMQ_PASSWORD"); v != "" {
		a.Rabbit.Pass = v
	}
}

func (a *App) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(a.Restaurant.TaxRateRaw))
	if err != nil {
		return fmt.Errorf("invalid config: app.tax_rate %q: %w", a.Restaurant.TaxRateRaw, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid config: app.tax_rate must be in [0, 1), got %s", rate)
	}
	a.Restaurant.TaxRate = rate

	switch a.Session.Backend {
	case SessionFile, SessionMemory:
	case SessionPostgres:
		if a.Database.Host == "" {
			return errors.New("invalid config: session backend postgres needs database.host")
		}
	default:
		return fmt.Errorf("invalid config: unknown session backend %q", a.Session.Backend)
	}
	if t := *a.Assistant.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("invalid config: assistant.temperature must be in [0, 2], got %v", t)
	}
	if a.Notifications.Enabled && a.Rabbit.Host == "" {
		return errors.New("invalid config: notifications need rabbitmq.host")
	}
	seen := map[string]bool{}
	for _, acc := range a.Accounts {
		if acc.Username == "" || acc.Role == "" {
			return errors.New("invalid config: every account needs username and role")
		}
		if seen[acc.Username] {
			return fmt.Errorf("invalid config: duplicate account %q", acc.Username)
		}
		seen[acc.Username] = true
	}
	return nil
}

// DefaultAccounts are the demo sign-ins of the floor terminal.
func DefaultAccounts() []Account {
	return []Account{
		{Username: "admin", Password: "123", FullName: "Alex Thompson", Role: "ADMIN"},
		{Username: "staff", Password: "123", FullName: "Sarah Jenkins", Role: "STAFF"},
		{Username: "kitchen", Password: "123", FullName: "Marcus Chef", Role: "KITCHEN"},
		{Username: "cashier", Password: "123", FullName: "Michael Cash", Role: "CASHIER"},
		{Username: "customer", Password: "123", FullName: "Guest Table 05", Role: "CUSTOMER", TableID: "5"},
	}
}

func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
