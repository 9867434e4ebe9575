// Package config reads engine settings from the environment, optionally seeded by a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Store       string
	DSN         string
	ScenarioDir string

	Origin      entities.BranchID
	Excluded    entities.BranchID
	Priority    []entities.BranchID
	BranchNames map[entities.BranchID]string

	BatchChunkSize    int
	BatchFanOut       int
	AllocationWorkers int

	AMQPURL     string
	EventsQueue string

	LogLevel zerolog.Level
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	raw := getenv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}

// Load reads the configuration. Values already in the environment win over the .env file;
// a missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	cfg := Config{
		Store:       getenv("LOGILINK_STORE", StoreMemory),
		DSN:         getenv("LOGILINK_DSN", "logilink.db"),
		ScenarioDir: getenv("LOGILINK_SCENARIO_DIR", ""),
		Origin:      entities.BranchID(getenv("LOGILINK_ORIGIN", "00")),
		Excluded:    entities.BranchID(getenv("LOGILINK_EXCLUDED", "99")),
		Priority:    ParseBranchList(getenv("LOGILINK_PRIORITY", "01,02,03,04")),
		AMQPURL:     getenv("LOGILINK_AMQP_URL", ""),
		EventsQueue: getenv("LOGILINK_EVENTS_QUEUE", "logilink.events"),
	}

	names, err := ParseBranchNames(getenv("LOGILINK_BRANCH_NAMES", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.BranchNames = names

	if cfg.BatchChunkSize, err = getenvInt("LOGILINK_BATCH_CHUNK", 500); err != nil {
		return Config{}, err
	}
	if cfg.BatchFanOut, err = getenvInt("LOGILINK_BATCH_FANOUT", 50); err != nil {
		return Config{}, err
	}
	if cfg.AllocationWorkers, err = getenvInt("LOGILINK_ALLOCATION_WORKERS", 8); err != nil {
		return Config{}, err
	}

	level, err := zerolog.ParseLevel(getenv("LOGILINK_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOGILINK_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.Store {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return Config{}, fmt.Errorf("unknown store %q, expected memory, sqlite or postgres", cfg.Store)
	}
	return cfg, nil
}

// Network builds the validated branch network of the configuration
func (c Config) Network() (*entities.Network, error) {
	return entities.NewNetwork(c.Origin, c.Excluded, c.Priority, c.BranchNames)
}

// ParseBranchList splits a comma separated id list, dropping blanks
func ParseBranchList(raw string) []entities.BranchID {
	var ids []entities.BranchID
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, entities.BranchID(id))
		}
	}
	return ids
}

// ParseBranchNames parses "01=Downtown,02=Harbor"
func ParseBranchNames(raw string) (map[entities.BranchID]string, error) {
	names := make(map[entities.BranchID]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, name, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid branch name entry %q, expected id=name", part)
		}
		names[entities.BranchID(strings.TrimSpace(id))] = strings.TrimSpace(name)
	}
	return names, nil
}
