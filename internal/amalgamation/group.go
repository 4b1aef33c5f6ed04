package amalgamation

import (
	"sort"

	amerrors "github.com/mantonx/amalgam/internal/errors"
)

// GroupPreference is the precedence configuration of one scraper group:
// an overall ordering plus optional per-field overrides.
type GroupPreference struct {
	group     GroupName
	overall   *Ordering
	overrides map[string]*Ordering
}

// NewGroupPreference creates a group preference. A nil overall ordering is
// replaced by the default ordering.
func NewGroupPreference(group GroupName, overall *Ordering) *GroupPreference {
	if overall == nil {
		overall = NewDefaultOrdering()
	}
	return &GroupPreference{
		group:     group,
		overall:   overall,
		overrides: make(map[string]*Ordering),
	}
}

func (p *GroupPreference) Group() GroupName {
	return p.group
}

// Overall returns the ordering used by fields without an override. Never nil.
func (p *GroupPreference) Overall() *Ordering {
	return p.overall
}

func (p *GroupPreference) SetOverall(o *Ordering) {
	if o == nil {
		o = NewDefaultOrdering()
	}
	p.overall = o
}

// Override returns the ordering set for field, if any
func (p *GroupPreference) Override(field string) (*Ordering, bool) {
	o, ok := p.overrides[field]
	return o, ok
}

// SetOverride sets the ordering for one field. The field must belong to the
// group's current schema.
func (p *GroupPreference) SetOverride(field string, o *Ordering) error {
	if !p.group.HasField(field) {
		return amerrors.NewUnknownField(p.group.String(), field)
	}
	if o == nil {
		o = NewOrdering()
	}
	p.overrides[field] = o
	return nil
}

// RemoveOverride drops the override for field and reports whether one existed
func (p *GroupPreference) RemoveOverride(field string) bool {
	_, ok := p.overrides[field]
	delete(p.overrides, field)
	return ok
}

// OverrideFields returns the fields that carry an override, sorted
func (p *GroupPreference) OverrideFields() []string {
	fields := make([]string, 0, len(p.overrides))
	for f := range p.overrides {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Overrides returns a copy of the field → ordering map
func (p *GroupPreference) Overrides() map[string]*Ordering {
	out := make(map[string]*Ordering, len(p.overrides))
	for f, o := range p.overrides {
		out[f] = o
	}
	return out
}

// OrderingFor returns the override for field, or the overall ordering
func (p *GroupPreference) OrderingFor(field string) *Ordering {
	if o, ok := p.overrides[field]; ok {
		return o
	}
	return p.overall
}
