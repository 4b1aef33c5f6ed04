package preferencesmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/amalgam/internal/amalgamation"
	"github.com/mantonx/amalgam/internal/amalgamation/persistence"
	amerrors "github.com/mantonx/amalgam/internal/errors"
)

// GroupInfo describes one scraper group and the fields it can override
type GroupInfo struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// EffectiveOrdering is the ordering that applies to one field
type EffectiveOrdering struct {
	Group  string               `json:"group"`
	Field  string               `json:"field"`
	Origin string               `json:"origin"`
	Order  []amalgamation.Entry `json:"order"`
}

const (
	originOverride = "override"
	originOverall  = "overall"
	originDefault  = "default"
)

// HandleListSources lists the source identifiers the registry can resolve
func (m *Module) HandleListSources(c *gin.Context) {
	ids := m.registry.ListRegistered()
	c.JSON(http.StatusOK, gin.H{
		"sources": ids,
		"count":   len(ids),
	})
}

func (m *Module) HandleListGroups(c *gin.Context) {
	groups := make([]GroupInfo, 0, len(amalgamation.AllGroups()))
	for _, g := range amalgamation.AllGroups() {
		groups = append(groups, GroupInfo{Name: g.String(), Fields: g.Fields()})
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (m *Module) HandleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, m.Document())
}

func (m *Module) HandleGetGroup(c *gin.Context) {
	group, err := amalgamation.ParseGroupName(c.Param("group"))
	if err != nil {
		amerrors.Respond(c, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gp, ok := m.prefs.Get(group)
	if !ok {
		amerrors.NewNotFoundError("group preference", group.String()).ToGinResponse(c)
		return
	}
	c.JSON(http.StatusOK, persistence.NewGroupDocument(gp))
}

// HandleSetOverall replaces the overall ordering, creating the group on
// first use
func (m *Module) HandleSetOverall(c *gin.Context) {
	group, err := amalgamation.ParseGroupName(c.Param("group"))
	if err != nil {
		amerrors.Respond(c, err)
		return
	}

	ordering, ok := m.bindOrdering(c)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gp := m.prefs.GetOrCreate(group)
	gp.SetOverall(ordering)
	m.logger.Debug("overall ordering replaced", "group", group, "sources", ordering.TypeIDs())

	c.JSON(http.StatusOK, persistence.NewGroupDocument(gp))
}

func (m *Module) HandleSetOverride(c *gin.Context) {
	group, err := amalgamation.ParseGroupName(c.Param("group"))
	if err != nil {
		amerrors.Respond(c, err)
		return
	}
	field := c.Param("field")
	if !group.HasField(field) {
		amerrors.NewUnknownField(group.String(), field).ToGinResponse(c)
		return
	}

	ordering, ok := m.bindOrdering(c)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gp := m.prefs.GetOrCreate(group)
	if err := gp.SetOverride(field, ordering); err != nil {
		amerrors.Respond(c, err)
		return
	}
	m.logger.Debug("field ordering set", "group", group, "field", field, "sources", ordering.TypeIDs())

	c.JSON(http.StatusOK, persistence.NewGroupDocument(gp))
}

func (m *Module) HandleRemoveOverride(c *gin.Context) {
	group, err := amalgamation.ParseGroupName(c.Param("group"))
	if err != nil {
		amerrors.Respond(c, err)
		return
	}
	field := c.Param("field")

	m.mu.Lock()
	defer m.mu.Unlock()

	gp, ok := m.prefs.Get(group)
	if !ok || !gp.RemoveOverride(field) {
		amerrors.NewNotFoundError("field ordering", group.String()+"."+field).ToGinResponse(c)
		return
	}

	c.JSON(http.StatusOK, persistence.NewGroupDocument(gp))
}

// HandleGetEffectiveOrdering reports which ordering applies to a field: the
// field override, else the group's overall ordering, else the default
// ordering when the group has no preference
func (m *Module) HandleGetEffectiveOrdering(c *gin.Context) {
	group, err := amalgamation.ParseGroupName(c.Param("group"))
	if err != nil {
		amerrors.Respond(c, err)
		return
	}
	field := c.Param("field")
	if !group.HasField(field) {
		amerrors.NewUnknownField(group.String(), field).ToGinResponse(c)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := EffectiveOrdering{Group: group.String(), Field: field}

	gp, ok := m.prefs.Get(group)
	if !ok {
		result.Origin = originDefault
		result.Order = amalgamation.NewDefaultOrdering().Entries()
	} else if o, has := gp.Override(field); has {
		result.Origin = originOverride
		result.Order = o.Entries()
	} else {
		result.Origin = originOverall
		result.Order = gp.Overall().Entries()
	}

	c.JSON(http.StatusOK, result)
}

func (m *Module) HandleSave(c *gin.Context) {
	if err := m.Save(); err != nil {
		amerrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saved":  true,
		"groups": m.GroupCount(),
	})
}

func (m *Module) HandleReload(c *gin.Context) {
	if err := m.Reload(); err != nil {
		amerrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reloaded": true,
		"groups":   m.GroupCount(),
	})
}

// bindOrdering reads an ordering body and resolves it exactly as given. An
// empty order stays empty.
func (m *Module) bindOrdering(c *gin.Context) (*amalgamation.Ordering, bool) {
	var body persistence.OrderingDocument
	if err := c.ShouldBindJSON(&body); err != nil {
		amerrors.NewValidationError("invalid ordering: "+err.Error(), "order").ToGinResponse(c)
		return nil, false
	}

	ordering, err := body.Resolve(m.registry)
	if err != nil {
		amerrors.Respond(c, err)
		return nil, false
	}
	return ordering, true
}
