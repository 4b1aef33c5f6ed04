// Package persistence reads and writes amalgamation preferences as a JSON
// settings document.
//
// Loading is all-or-nothing with one exception: a custom ordering keyed by a
// field the group no longer knows is dropped so that documents written by
// other versions still load. Unknown groups and unresolvable source
// identifiers fail the whole load.
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mantonx/amalgam/internal/amalgamation"
	amerrors "github.com/mantonx/amalgam/internal/errors"
	"github.com/mantonx/amalgam/internal/logger"
	"github.com/mantonx/amalgam/internal/sources"
)

// Resolver turns a persisted type identifier into a fresh source
type Resolver interface {
	Resolve(typeID string) (sources.Source, error)
}

// Document is the top-level settings document, keyed by group name
type Document map[string]*GroupDocument

// GroupDocument is the persisted form of one group preference
type GroupDocument struct {
	ScraperGroupName string                       `json:"scraperGroupName"`
	OverallOrdering  *OrderingDocument            `json:"overallOrdering"`
	CustomOrderings  map[string]*OrderingDocument `json:"customOrderings,omitempty"`
}

// OrderingDocument is the persisted form of one ordering
type OrderingDocument struct {
	Order []amalgamation.Entry `json:"order"`
}

// ToDocument converts preferences into their document form
func ToDocument(prefs *amalgamation.Preferences) Document {
	doc := make(Document)
	if prefs == nil {
		return doc
	}

	for _, group := range prefs.Groups() {
		gp, _ := prefs.Get(group)
		doc[group.String()] = NewGroupDocument(gp)
	}
	return doc
}

// NewGroupDocument converts one group preference
func NewGroupDocument(gp *amalgamation.GroupPreference) *GroupDocument {
	gd := &GroupDocument{
		ScraperGroupName: gp.Group().String(),
		OverallOrdering:  NewOrderingDocument(gp.Overall()),
	}

	if overrides := gp.Overrides(); len(overrides) > 0 {
		gd.CustomOrderings = make(map[string]*OrderingDocument, len(overrides))
		for field, o := range overrides {
			gd.CustomOrderings[field] = NewOrderingDocument(o)
		}
	}
	return gd
}

// NewOrderingDocument converts one ordering. Identifiers are read off the
// live sources.
func NewOrderingDocument(o *amalgamation.Ordering) *OrderingDocument {
	od := &OrderingDocument{Order: []amalgamation.Entry{}}
	if o != nil {
		od.Order = append(od.Order, o.Entries()...)
	}
	return od
}

// Resolve builds an ordering from the document exactly as written: an
// empty order gives an empty ordering.
func (od *OrderingDocument) Resolve(resolver Resolver) (*amalgamation.Ordering, error) {
	if od == nil {
		return amalgamation.NewOrdering(), nil
	}

	srcs := make([]sources.Source, 0, len(od.Order))
	for _, entry := range od.Order {
		src, err := resolver.Resolve(entry.TypeID)
		if err != nil {
			return nil, err
		}
		src.SetDisabled(entry.Disabled)
		srcs = append(srcs, src)
	}
	return amalgamation.NewOrdering(srcs...), nil
}

// loadOrdering applies the load-time fallback: a missing or empty order
// becomes the default ordering.
func loadOrdering(od *OrderingDocument, resolver Resolver) (*amalgamation.Ordering, error) {
	if od == nil || len(od.Order) == 0 {
		return amalgamation.NewDefaultOrdering(), nil
	}
	return od.Resolve(resolver)
}

// FromDocument builds preferences from a document. An empty document yields
// nil preferences and no error.
func FromDocument(doc Document, resolver Resolver) (*amalgamation.Preferences, error) {
	if len(doc) == 0 {
		return nil, nil
	}

	log := logger.Named("persistence")

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	prefs := amalgamation.NewPreferences()
	for _, key := range keys {
		group, err := amalgamation.ParseGroupName(key)
		if err != nil {
			return nil, amerrors.NewCorruptDocument("unrecognized scraper group in settings", err)
		}

		gd := doc[key]
		if gd == nil {
			return nil, amerrors.NewCorruptDocument(fmt.Sprintf("scraper group %s has no preference", key), nil)
		}
		if gd.ScraperGroupName != "" && gd.ScraperGroupName != key {
			log.Debug("scraperGroupName does not match its key", "key", key, "scraperGroupName", gd.ScraperGroupName)
		}

		overall, err := loadOrdering(gd.OverallOrdering, resolver)
		if err != nil {
			return nil, amerrors.NewCorruptDocument(fmt.Sprintf("cannot load overall ordering of %s", key), err)
		}
		gp := amalgamation.NewGroupPreference(group, overall)

		fields := make([]string, 0, len(gd.CustomOrderings))
		for field := range gd.CustomOrderings {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			o, err := loadOrdering(gd.CustomOrderings[field], resolver)
			if err != nil {
				return nil, amerrors.NewCorruptDocument(fmt.Sprintf("cannot load ordering of %s.%s", key, field), err)
			}
			if err := gp.SetOverride(field, o); err != nil {
				log.Debug("dropping custom ordering for unknown field", "group", key, "field", field)
				continue
			}
		}

		prefs.Put(gp)
	}

	return prefs, nil
}

// Decode reads a settings document. Empty input, null and {} all yield nil
// preferences and no error. Read errors are returned unchanged; malformed
// content is reported as CORRUPT_DOCUMENT.
func Decode(r io.Reader, resolver Resolver) (*amalgamation.Preferences, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeBytes(data, resolver)
}

func decodeBytes(data []byte, resolver Resolver) (*amalgamation.Preferences, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, amerrors.NewCorruptDocument("settings document is not valid JSON", err)
	}
	return FromDocument(doc, resolver)
}

// Encode writes prefs as a pretty-printed settings document
func Encode(w io.Writer, prefs *amalgamation.Preferences) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(ToDocument(prefs))
}
