package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sadopc/pomo/internal/store"
)

// Config holds process-level settings. Timer settings live in the store.
type Config struct {
	DBPath  string // POMO_DB
	LogPath string // POMO_LOG, defaults to pomo.log next to the database
	Debug   bool   // POMO_DEBUG

	logSet bool
}

// Load reads .env (if any) and then the environment. Variables already set
// in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is Load with an explicit .env path. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, err
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	defDB, err := store.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	c := &Config{
		DBPath: get("POMO_DB", defDB),
	}
	c.logSet = os.Getenv("POMO_LOG") != ""
	c.LogPath = get("POMO_LOG", defaultLogPath(c.DBPath))
	c.Debug, _ = strconv.ParseBool(get("POMO_DEBUG", "false"))
	return c, nil
}

// SetDBPath points the config at another database. The log follows the
// database unless POMO_LOG names it explicitly.
func (c *Config) SetDBPath(path string) {
	c.DBPath = path
	if !c.logSet {
		c.LogPath = defaultLogPath(path)
	}
}

func defaultLogPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "pomo.log")
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
