package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Register mounts the management API on e.
func Register(e *echo.Echo, types *TypeHandler, mods *ModuleHandler) {
	e.GET("/types", types.ListTypes)
	e.GET("/types/:type", types.GetType)
	e.GET("/types/:type/schema", types.GetSchema)

	e.GET("/modules", mods.ListModules)
	e.POST("/modules", mods.CreateModule, middleware.BodyLimit(maxBody))
	e.GET("/modules/:label", mods.GetModule)
	e.DELETE("/modules/:label", mods.DeleteModule)
	e.GET("/modules/:label/cfi", mods.GetModuleCfi)
	e.GET("/modules/:label/dependencies", mods.GetDependencies)
	e.POST("/modules/:label/publish", mods.PublishModule)
	e.GET("/modules/:label/published", mods.ListPublished)

	e.GET("/menu/resolve", mods.ResolveMenu)
}
