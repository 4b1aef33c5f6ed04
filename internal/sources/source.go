// Package sources defines the data sources whose values the amalgamation
// engine merges, and the registry that turns a persisted type identifier
// back into a live source.
package sources

import "net/http"

// DefaultTypeID is the reserved identifier of the fallback source. It is
// always resolvable.
const DefaultTypeID = "default"

// Source is a data-source plugin as seen by the preference layer. Scraping
// behavior lives elsewhere; only identity and the disabled flag matter here.
type Source interface {
	// TypeID returns the stable identifier written to the settings document
	TypeID() string
	// Name returns a display name
	Name() string
	Disabled() bool
	SetDisabled(disabled bool)
}

// BasicSource is the concrete source used by the built-in factories
type BasicSource struct {
	typeID   string
	name     string
	disabled bool
}

// NewBasic creates an enabled source with the given identity
func NewBasic(typeID, name string) *BasicSource {
	return &BasicSource{typeID: typeID, name: name}
}

// NewDefault creates a fresh enabled default source
func NewDefault() *BasicSource {
	return NewBasic(DefaultTypeID, "Default")
}

func (s *BasicSource) TypeID() string            { return s.typeID }
func (s *BasicSource) Name() string              { return s.name }
func (s *BasicSource) Disabled() bool            { return s.disabled }
func (s *BasicSource) SetDisabled(disabled bool) { s.disabled = disabled }

// Built-in source identifiers
const (
	TMDBTypeID        = "tmdb"
	MusicBrainzTypeID = "musicbrainz"
	AudioDBTypeID     = "audiodb"
	EmbeddedTypeID    = "embedded"
	FilenameTypeID    = "filename"
)

var builtins = []struct {
	typeID string
	name   string
	remote bool
}{
	{TMDBTypeID, "The Movie Database", true},
	{MusicBrainzTypeID, "MusicBrainz", true},
	{AudioDBTypeID, "TheAudioDB", true},
	{EmbeddedTypeID, "Embedded Tags", false},
	{FilenameTypeID, "Filename Parser", false},
}

// RegisterBuiltins registers the factories for the sources shipped with the
// service. Sources backed by an online service share the HTTP client given
// with WithHTTPClient.
func RegisterBuiltins(r *Registry, opts ...BuiltinOption) error {
	o := builtinOptions{client: &http.Client{Timeout: DefaultRequestTimeout}}
	for _, opt := range opts {
		opt(&o)
	}

	for _, b := range builtins {
		typeID, name, remote := b.typeID, b.name, b.remote
		if err := r.Register(typeID, func() (Source, error) {
			if remote {
				return NewRemote(typeID, name, o.client), nil
			}
			return NewBasic(typeID, name), nil
		}); err != nil {
			return err
		}
	}
	return nil
}
