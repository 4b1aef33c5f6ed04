package preferencesmodule

import (
	"github.com/gin-gonic/gin"

	"github.com/mantonx/amalgam/internal/apiroutes"
)

// RegisterRoutes registers the preferences routes under rg
func (m *Module) RegisterRoutes(rg *gin.RouterGroup) {
	api := rg.Group("/amalgamation")
	{
		api.GET("/sources", m.HandleListSources)
		apiroutes.Register(api.BasePath()+"/sources", "GET", "List registered source type identifiers.")

		api.GET("/groups", m.HandleListGroups)
		apiroutes.Register(api.BasePath()+"/groups", "GET", "List scraper groups and their fields.")

		prefs := api.Group("/preferences")
		{
			prefs.GET("", m.HandleGetPreferences)
			apiroutes.Register(prefs.BasePath(), "GET", "Get all amalgamation preferences.")

			prefs.POST("/save", m.HandleSave)
			apiroutes.Register(prefs.BasePath()+"/save", "POST", "Write the preferences to storage.")

			prefs.POST("/reload", m.HandleReload)
			apiroutes.Register(prefs.BasePath()+"/reload", "POST", "Discard changes and reload the preferences from storage.")

			prefs.GET("/:group", m.HandleGetGroup)
			apiroutes.Register(prefs.BasePath()+"/:group", "GET", "Get the preference of one scraper group.")

			prefs.PUT("/:group/overall", m.HandleSetOverall)
			apiroutes.Register(prefs.BasePath()+"/:group/overall", "PUT", "Replace the overall ordering of a group.")

			prefs.PUT("/:group/fields/:field", m.HandleSetOverride)
			apiroutes.Register(prefs.BasePath()+"/:group/fields/:field", "PUT", "Set the ordering override of a field.")

			prefs.DELETE("/:group/fields/:field", m.HandleRemoveOverride)
			apiroutes.Register(prefs.BasePath()+"/:group/fields/:field", "DELETE", "Remove the ordering override of a field.")

			prefs.GET("/:group/fields/:field/ordering", m.HandleGetEffectiveOrdering)
			apiroutes.Register(prefs.BasePath()+"/:group/fields/:field/ordering", "GET", "Get the ordering in effect for a field.")
		}
	}
}
