package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/carrot-trail/game/engine"
	"github.com/wricardo/carrot-trail/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultLevelID is the level used when a session names none.
const DefaultLevelID = "first"

var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles level loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.LevelConfig
	configs       map[string]*engine.LevelConfig
	mu            sync.RWMutex
}

// NewManager creates a new level catalogue over configDir
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.LevelConfig),
	}
	m.defaultConfig = m.pickDefault()

	return m, nil
}

// levelID strips a known extension from name.
func levelID(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range extensions {
		if ext == known {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return name
}

// findFile returns the path of the level file for id.
func (m *Manager) findFile(id string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, id)
}

// LoadConfig loads a level by id. The id may carry its file extension.
func (m *Manager) LoadConfig(name string) (*engine.LevelConfig, error) {
	id := levelID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findFile(id)
	if err != nil {
		return nil, err
	}

	config, err := engine.LoadLevelConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, id, err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about every valid level in the directory.
// Invalid files are logged and skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := levelID(entry.Name())
		if id == entry.Name() || seen[id] {
			continue
		}
		seen[id] = true

		config, err := m.LoadConfig(id)
		if err != nil {
			log.WithFields(log.Fields{"file": entry.Name(), "error": err}).Warn("skipping invalid level")
			continue
		}

		info := &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
		}
		if grid, err := engine.NewGrid(config.Layout); err == nil {
			info.Width = grid.Width()
			info.Height = grid.Height()
			info.Carrots = grid.Count(engine.Collectible)
		}
		configs = append(configs, info)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default level by id
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached levels so the next load rereads the files
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	config := m.pickDefault()

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// pickDefault prefers DefaultLevelID, then the first valid level on disk,
// then the built-in level.
func (m *Manager) pickDefault() *engine.LevelConfig {
	if config, err := m.LoadConfig(DefaultLevelID); err == nil {
		return config
	}

	configs, err := m.ListConfigs()
	if err != nil || len(configs) == 0 {
		log.WithField("dir", m.configDir).Info("no levels on disk, using built-in level")
		return engine.DefaultLevelConfig()
	}

	config, err := m.LoadConfig(configs[0].ConfigID)
	if err != nil {
		return engine.DefaultLevelConfig()
	}
	return config
}

// SaveConfig validates a level and writes it to the directory. The file
// format follows the extension of name and defaults to JSON.
func (m *Manager) SaveConfig(name string, config *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	id := levelID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: bad level id %q", ErrInvalidConfig, name)
	}

	filename := name
	if id == name {
		filename = name + ".json"
	}

	var data []byte
	var err error
	if engine.FormatFromPath(filename) == "yaml" {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	// Remove siblings in other formats so the id stays unambiguous.
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, id+ext)
		if id+ext == filename {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to replace level file: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}
