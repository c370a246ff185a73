package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/akave-ai/hltmenu/internal/infrastructure/modules"
	"github.com/akave-ai/hltmenu/internal/response"
)

// TypeHandler serves the module type registry under /types.
type TypeHandler struct {
	Registry *modules.Registry
}

// ListTypes returns the config spec of every registered module type (GET /types).
func (h *TypeHandler) ListTypes(c echo.Context) error {
	return response.OK(c, map[string]any{"types": h.Registry.AllTypesInfo()}, "")
}

// GetType returns the config spec of one module type (GET /types/:type).
func (h *TypeHandler) GetType(c echo.Context) error {
	typeName := c.Param("type")
	info, ok := h.Registry.GetTypeInfo(typeName)
	if !ok {
		return response.NotFound(c, "unknown module type", typeName)
	}
	return response.OK(c, info, "")
}

// GetSchema returns the JSON schema of one module type (GET /types/:type/schema).
func (h *TypeHandler) GetSchema(c echo.Context) error {
	typeName := c.Param("type")
	schema, err := h.Registry.GetSchema(typeName)
	if err != nil {
		if errors.Is(err, modules.ErrUnknownModuleType) {
			return response.NotFound(c, "unknown module type", typeName)
		}
		return response.NotFound(c, "schema not available", err.Error())
	}
	return response.OK(c, schema, "")
}
