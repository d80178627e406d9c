package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	mb "github.com/saeidalz13/seabattle/models/battleship"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	SlotStoreSQLite   = "sqlite"
	SlotStorePostgres = "postgres"

	defaultPort       = 8000
	defaultSQLitePath = "seabattle.db"
)

type Config struct {
	Stage       string
	Port        int
	SlotStore   string
	DatabaseUrl string
	SQLitePath  string
	Game        mb.Settings
}

// Load reads .env outside production and then the environment.
func Load(envFile string) (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, err
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a variable lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Stage:      getenv("STAGE"),
		Port:       defaultPort,
		SlotStore:  strings.ToLower(getenv("SLOT_STORE")),
		SQLitePath: getenv("SQLITE_PATH"),
		Game:       mb.DefaultSettings(),
	}
	cfg.DatabaseUrl = getenv("DATABASE_URL")

	if cfg.Stage == "" {
		cfg.Stage = StageDev
	}
	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, fmt.Errorf("stage must be either dev or prod, got: %s", cfg.Stage)
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT: %s", v)
		}
		cfg.Port = port
	}

	switch cfg.SlotStore {
	case "":
		cfg.SlotStore = SlotStoreSQLite
	case SlotStoreSQLite, SlotStorePostgres:
	default:
		return Config{}, fmt.Errorf("SLOT_STORE must be sqlite or postgres, got: %s", cfg.SlotStore)
	}
	if cfg.SlotStore == SlotStorePostgres && cfg.DatabaseUrl == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres slot store")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = defaultSQLitePath
	}

	if err := applyGameSettings(&cfg.Game, getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyGameSettings(s *mb.Settings, getenv func(string) string) error {
	if v := getenv("FIELD_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FIELD_SIZE: %s", v)
		}
		s.FieldSize = size
	}

	if v := getenv("FLEET"); v != "" {
		fleet, err := mb.ParseFleet(v)
		if err != nil {
			return err
		}
		s.Fleet = fleet
	}

	mode, err := mb.ParsePlacementMode(getenv("PLACEMENT_MODE"))
	if err != nil {
		return err
	}
	s.PlacementMode = mode

	if v := getenv("PLAYER_NAME"); v != "" {
		s.PlayerName = v
	}

	if v := getenv("KEEP_LAYOUT"); v != "" {
		keep, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid KEEP_LAYOUT: %s", v)
		}
		s.KeepLayout = keep
	}

	return s.Validate()
}
