package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrSessionNotFound is returned when no session is stored for a server.
var ErrSessionNotFound = errors.New("session not found")

// Session is a saved login for one server.
type Session struct {
	Server    string    `json:"server"`
	Transport string    `json:"transport"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Config represents the sessions file.
type Config struct {
	Version  int                `json:"version"`
	Sessions map[string]Session `json:"sessions"`
}

// Store manages saved sessions on the local filesystem.
// Sessions hold bearer tokens so the directory is 0700 and the file 0600.
type Store struct {
	baseDir string
}

// NewStore creates a new session store.
// If baseDir is empty, uses ~/.tasktracker/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".tasktracker")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	store := &Store{baseDir: baseDir}

	if err := store.ensureConfig(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return store, nil
}

// Get returns the session saved for server.
func (s *Store) Get(server string) (*Session, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	session, ok := cfg.Sessions[server]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// Save stores session, replacing any previous session for the same server.
func (s *Store) Save(session Session) error {
	if session.Server == "" {
		return errors.New("session server is required")
	}

	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	cfg.Sessions[session.Server] = session

	if err := s.saveConfig(cfg); err != nil {
		return err
	}

	log.Debug().Str("server", session.Server).Str("username", session.Username).Msg("session saved")

	return nil
}

// Delete removes the session for server. Deleting a missing session is not an error.
func (s *Store) Delete(server string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	if _, ok := cfg.Sessions[server]; !ok {
		return nil
	}
	delete(cfg.Sessions, server)

	if err := s.saveConfig(cfg); err != nil {
		return err
	}

	log.Debug().Str("server", server).Msg("session deleted")

	return nil
}

// List returns all saved sessions ordered by server.
func (s *Store) List() ([]Session, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(cfg.Sessions))
	for _, session := range cfg.Sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Server < sessions[j].Server
	})

	return sessions, nil
}

// ensureConfig creates an empty config if it doesn't exist.
func (s *Store) ensureConfig() error {
	configPath := filepath.Join(s.baseDir, "sessions.json")

	if _, err := os.Stat(configPath); err == nil {
		return nil // Config exists
	}

	cfg := &Config{
		Version:  1,
		Sessions: make(map[string]Session),
	}

	return s.saveConfig(cfg)
}

// loadConfig reads the config file.
func (s *Store) loadConfig() (*Config, error) {
	configPath := filepath.Join(s.baseDir, "sessions.json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Sessions == nil {
		cfg.Sessions = make(map[string]Session)
	}

	return &cfg, nil
}

// saveConfig writes the config file atomically.
func (s *Store) saveConfig(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to temp file first
	configPath := filepath.Join(s.baseDir, "sessions.json")
	tempPath := configPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, configPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}
