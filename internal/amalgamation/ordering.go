package amalgamation

import (
	"fmt"

	"github.com/mantonx/amalgam/internal/sources"
)

// Entry is a snapshot of one position in an ordering
type Entry struct {
	TypeID   string `json:"className"`
	Disabled bool   `json:"disabled"`
}

// Ordering is a precedence list of sources, highest priority first. The
// ordering owns its sources; each carries its own disabled flag.
//
// An empty ordering is valid in memory. The settings loader replaces empty
// orderings with the default one, construction does not.
type Ordering struct {
	sources []sources.Source
}

// NewOrdering creates an ordering from srcs in the given order
func NewOrdering(srcs ...sources.Source) *Ordering {
	o := &Ordering{sources: make([]sources.Source, 0, len(srcs))}
	for _, s := range srcs {
		if s != nil {
			o.sources = append(o.sources, s)
		}
	}
	return o
}

// NewDefaultOrdering creates the fallback ordering: the default source, enabled
func NewDefaultOrdering() *Ordering {
	return NewOrdering(sources.NewDefault())
}

// Sources returns the sources in precedence order
func (o *Ordering) Sources() []sources.Source {
	out := make([]sources.Source, len(o.sources))
	copy(out, o.sources)
	return out
}

func (o *Ordering) Len() int {
	return len(o.sources)
}

func (o *Ordering) IsEmpty() bool {
	return len(o.sources) == 0
}

// At returns the source at pos
func (o *Ordering) At(pos int) (sources.Source, error) {
	if pos < 0 || pos >= len(o.sources) {
		return nil, fmt.Errorf("position %d out of range [0,%d)", pos, len(o.sources))
	}
	return o.sources[pos], nil
}

// IsDisabled reports the disabled flag of the source at pos
func (o *Ordering) IsDisabled(pos int) (bool, error) {
	src, err := o.At(pos)
	if err != nil {
		return false, err
	}
	return src.Disabled(), nil
}

// SetDisabled replaces the disabled flag of the source at pos
func (o *Ordering) SetDisabled(pos int, disabled bool) error {
	src, err := o.At(pos)
	if err != nil {
		return err
	}
	src.SetDisabled(disabled)
	return nil
}

// Enabled returns the enabled sources in precedence order. This is the list
// the amalgamation engine walks for a field.
func (o *Ordering) Enabled() []sources.Source {
	out := make([]sources.Source, 0, len(o.sources))
	for _, s := range o.sources {
		if !s.Disabled() {
			out = append(out, s)
		}
	}
	return out
}

// TypeIDs returns the type identifiers in order
func (o *Ordering) TypeIDs() []string {
	ids := make([]string, len(o.sources))
	for i, s := range o.sources {
		ids[i] = s.TypeID()
	}
	return ids
}

// Entries returns a snapshot of identifiers and disabled flags in order
func (o *Ordering) Entries() []Entry {
	entries := make([]Entry, len(o.sources))
	for i, s := range o.sources {
		entries[i] = Entry{TypeID: s.TypeID(), Disabled: s.Disabled()}
	}
	return entries
}
