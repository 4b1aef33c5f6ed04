package amalgamation

import "sort"

// Preferences maps each configured group to its preference. It carries no
// locking; callers that share one across goroutines serialize access.
type Preferences struct {
	groups map[GroupName]*GroupPreference
}

// NewPreferences creates an empty set of preferences
func NewPreferences() *Preferences {
	return &Preferences{groups: make(map[GroupName]*GroupPreference)}
}

// Get returns the preference of group, if configured
func (p *Preferences) Get(group GroupName) (*GroupPreference, bool) {
	gp, ok := p.groups[group]
	return gp, ok
}

// Put stores gp under its group, replacing any previous entry. A nil gp is
// ignored.
func (p *Preferences) Put(gp *GroupPreference) {
	if gp == nil {
		return
	}
	p.groups[gp.Group()] = gp
}

// GetOrCreate returns the preference of group, creating one with the default
// overall ordering on first use
func (p *Preferences) GetOrCreate(group GroupName) *GroupPreference {
	if gp, ok := p.groups[group]; ok {
		return gp
	}
	gp := NewGroupPreference(group, nil)
	p.groups[group] = gp
	return gp
}

// Remove drops the preference of group and reports whether one existed
func (p *Preferences) Remove(group GroupName) bool {
	_, ok := p.groups[group]
	delete(p.groups, group)
	return ok
}

// Groups returns the configured groups, sorted
func (p *Preferences) Groups() []GroupName {
	groups := make([]GroupName, 0, len(p.groups))
	for g := range p.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

func (p *Preferences) Len() int {
	return len(p.groups)
}

// OrderingFor returns the ordering that applies to field within group. The
// second result is false when the group has no preference at all.
func (p *Preferences) OrderingFor(group GroupName, field string) (*Ordering, bool) {
	gp, ok := p.groups[group]
	if !ok {
		return nil, false
	}
	return gp.OrderingFor(field), true
}
