package persistence

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mantonx/amalgam/internal/amalgamation"
	"github.com/mantonx/amalgam/internal/database"
)

// Store loads and saves the whole preference set. Load returns nil
// preferences and no error when nothing has been saved yet.
type Store interface {
	Load() (*amalgamation.Preferences, error)
	Save(prefs *amalgamation.Preferences) error
}

// FileStore keeps preferences in a settings file
type FileStore struct {
	path     string
	resolver Resolver
}

func NewFileStore(path string, resolver Resolver) *FileStore {
	return &FileStore{path: path, resolver: resolver}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*amalgamation.Preferences, error) {
	return Load(s.path, s.resolver)
}

func (s *FileStore) Save(prefs *amalgamation.Preferences) error {
	return Save(prefs, s.path)
}

// DatabaseStore keeps the settings document in the amalgamation_settings table
type DatabaseStore struct {
	db       *gorm.DB
	name     string
	resolver Resolver
}

func NewDatabaseStore(db *gorm.DB, name string, resolver Resolver) *DatabaseStore {
	return &DatabaseStore{db: db, name: name, resolver: resolver}
}

func (s *DatabaseStore) Load() (*amalgamation.Preferences, error) {
	var row database.SettingsDocument
	err := s.db.Where("name = ?", s.name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", s.name, err)
	}

	return Decode(strings.NewReader(row.Document), s.resolver)
}

func (s *DatabaseStore) Save(prefs *amalgamation.Preferences) error {
	var buf bytes.Buffer
	if err := Encode(&buf, prefs); err != nil {
		return err
	}

	row := database.SettingsDocument{Name: s.name, Document: buf.String()}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to write settings %s: %w", s.name, err)
	}
	return nil
}
