// Package amalgamation holds the user's source-precedence preferences: a
// default ordering per scraper group and optional per-field overrides.
package amalgamation

import (
	"sort"

	amerrors "github.com/mantonx/amalgam/internal/errors"
)

// GroupName identifies a scraper group. The set is closed; the string value
// is what the settings document uses as a key.
type GroupName string

const (
	DefaultGroup GroupName = "DEFAULT_SCRAPER_GROUP"
	MovieGroup   GroupName = "MOVIE_SCRAPER_GROUP"
	TVGroup      GroupName = "TV_SCRAPER_GROUP"
	MusicGroup   GroupName = "MUSIC_SCRAPER_GROUP"
)

var movieFields = []string{
	"title", "original_title", "sort_title", "set", "year", "release_date",
	"rating", "votes", "top250", "outline", "plot", "tagline", "runtime",
	"mpaa", "id", "genres", "tags", "actors", "directors", "studios",
	"posters", "fanart", "extra_fanart", "trailer",
}

var tvFields = append(append([]string{}, movieFields...),
	"show_title", "season", "episode", "air_date",
)

var musicFields = []string{
	"title", "artist_name", "album_name", "release_year", "genres",
	"track_number", "duration", "posters",
}

var groupFields = map[GroupName]map[string]struct{}{
	DefaultGroup: fieldSet(movieFields),
	MovieGroup:   fieldSet(movieFields),
	TVGroup:      fieldSet(tvFields),
	MusicGroup:   fieldSet(musicFields),
}

func fieldSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// AllGroups returns every group name in a stable order
func AllGroups() []GroupName {
	return []GroupName{DefaultGroup, MovieGroup, TVGroup, MusicGroup}
}

// ParseGroupName maps a document key onto the closed group set
func ParseGroupName(s string) (GroupName, error) {
	g := GroupName(s)
	if _, ok := groupFields[g]; !ok {
		return "", amerrors.NewUnknownGroup(s)
	}
	return g, nil
}

func (g GroupName) String() string {
	return string(g)
}

// Valid reports whether g belongs to the closed set
func (g GroupName) Valid() bool {
	_, ok := groupFields[g]
	return ok
}

// HasField reports whether field is part of the group's current schema
func (g GroupName) HasField(field string) bool {
	_, ok := groupFields[g][field]
	return ok
}

// Fields returns the group's field names, sorted
func (g GroupName) Fields() []string {
	set := groupFields[g]
	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
