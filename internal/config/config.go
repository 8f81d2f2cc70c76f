package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "matrixdo.db"
	appDirName            = "matrixdo"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Edit      string `toml:"edit"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	NextTab   string `toml:"next_tab"`
	PrevTab   string `toml:"prev_tab"`
	Groups    string `toml:"groups"`
	PrevMonth string `toml:"prev_month"`
	NextMonth string `toml:"next_month"`
}

type AI struct {
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

type Config struct {
	DBPath             string `toml:"db_path"`
	DefaultFilter      string `toml:"default_filter"`
	CalendarName       string `toml:"calendar_name"`
	AutoUrgentInterval string `toml:"auto_urgent_interval"`
	AI                 AI     `toml:"ai"`
	Keys               Keymap `toml:"keys"`
}

// ResolveConfigPath places the config under the user config dir,
// falling back to the working directory when that is unavailable.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, appDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	return cfg, nil
}

// MonitorInterval parses auto_urgent_interval, falling back to 5m on
// an empty or malformed value.
func (c Config) MonitorInterval() time.Duration {
	d, err := time.ParseDuration(c.AutoUrgentInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultDBPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultDBName
	}
	return filepath.Join(base, appDirName, DefaultDBName)
}

func defaultConfig() Config {
	return Config{
		DBPath:             defaultDBPath(),
		DefaultFilter:      "all",
		CalendarName:       "matrixdo",
		AutoUrgentInterval: "5m",
		AI: AI{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 600,
		},
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "d",
			Edit:      "e",
			Confirm:   "enter",
			Cancel:    "esc",
			NextTab:   "tab",
			PrevTab:   "shift+tab",
			Groups:    "g",
			PrevMonth: "[",
			NextMonth: "]",
		},
	}
}
