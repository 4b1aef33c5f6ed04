// Package preferencesmodule serves the amalgamation preferences over HTTP.
// It owns the in-memory preferences and serializes every read and write.
package preferencesmodule

import (
	"bytes"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/amalgam/internal/amalgamation"
	"github.com/mantonx/amalgam/internal/amalgamation/persistence"
	"github.com/mantonx/amalgam/internal/logger"
	"github.com/mantonx/amalgam/internal/sources"
)

// Module holds the live preferences together with the store they are
// loaded from and the registry used to resolve source identifiers.
type Module struct {
	mu       sync.Mutex
	prefs    *amalgamation.Preferences
	store    persistence.Store
	registry *sources.Registry
	logger   hclog.Logger

	// saved is the document last written by Save. Watcher reloads that
	// decode to the same document are echoes of that write.
	saved []byte
}

func New(store persistence.Store, registry *sources.Registry) *Module {
	return &Module{
		prefs:    amalgamation.NewPreferences(),
		store:    store,
		registry: registry,
		logger:   logger.Named("preferences"),
	}
}

// ID returns the module identifier
func (m *Module) ID() string {
	return "system.preferences"
}

// Name returns the human-readable module name
func (m *Module) Name() string {
	return "Amalgamation Preferences"
}

// Init loads the stored preferences. Nothing stored yields empty
// preferences.
func (m *Module) Init() error {
	if err := m.Reload(); err != nil {
		return err
	}
	m.logger.Info("preferences module initialized", "groups", m.GroupCount())
	return nil
}

// Reload replaces the live preferences with the stored ones. On error the
// live preferences are left untouched.
func (m *Module) Reload() error {
	prefs, err := m.store.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.replace(prefs)
	return nil
}

// Save writes the live preferences through the store
func (m *Module) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(m.prefs); err != nil {
		return err
	}
	m.saved = m.reloadedForm(m.prefs)
	m.logger.Info("preferences saved", "groups", m.prefs.Len())
	return nil
}

// HandleSettingsChange applies a reload result from the settings watcher.
// Unreadable and empty files are ignored since a file being rewritten is
// briefly both. Reloads of the document this module last saved are ignored
// so that edits made after the save survive.
func (m *Module) HandleSettingsChange(prefs *amalgamation.Preferences, err error) {
	if err != nil {
		m.logger.Warn("ignoring unreadable settings file", "error", err)
		return
	}
	if prefs == nil {
		m.logger.Debug("ignoring empty settings file")
		return
	}

	var buf bytes.Buffer
	if err := persistence.Encode(&buf, prefs); err != nil {
		m.logger.Warn("ignoring settings file", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saved != nil && bytes.Equal(buf.Bytes(), m.saved) {
		m.logger.Debug("settings file matches the last save")
		return
	}
	m.replace(prefs)
	m.saved = nil
	m.logger.Info("preferences reloaded from settings file", "groups", m.prefs.Len())
}

// OrderingFor returns a snapshot of the ordering in effect for field within
// group
func (m *Module) OrderingFor(group amalgamation.GroupName, field string) ([]amalgamation.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.prefs.OrderingFor(group, field)
	if !ok {
		return nil, false
	}
	return o.Entries(), true
}

func (m *Module) GroupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs.Len()
}

// Document returns the live preferences in document form
func (m *Module) Document() persistence.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return persistence.ToDocument(m.prefs)
}

// reloadedForm encodes prefs the way they read back after a save: empty
// orderings come back as the default ordering.
func (m *Module) reloadedForm(prefs *amalgamation.Preferences) []byte {
	var buf bytes.Buffer
	if err := persistence.Encode(&buf, prefs); err != nil {
		return nil
	}
	reloaded, err := persistence.Decode(&buf, m.registry)
	if err != nil || reloaded == nil {
		return nil
	}

	buf.Reset()
	if err := persistence.Encode(&buf, reloaded); err != nil {
		return nil
	}
	return buf.Bytes()
}

func (m *Module) replace(prefs *amalgamation.Preferences) {
	if prefs == nil {
		prefs = amalgamation.NewPreferences()
	}
	m.prefs = prefs
}
