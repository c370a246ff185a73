package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/akave-ai/hltmenu/internal/infrastructure/modules"
	"github.com/akave-ai/hltmenu/internal/menu"
	"github.com/akave-ai/hltmenu/internal/model"
	"github.com/akave-ai/hltmenu/internal/pset"
	"github.com/akave-ai/hltmenu/internal/repository"
	"github.com/akave-ai/hltmenu/internal/response"
	"github.com/akave-ai/hltmenu/internal/storage"
)

const (
	maxBody        = "1M"
	cfiContentType = "text/x-python; charset=utf-8"
)

// Publisher uploads module fragments to object storage.
type Publisher interface {
	PublishModule(ctx context.Context, menu string, mod *pset.Module) (string, error)
	ListPublished(ctx context.Context, menu, label string) ([]storage.ObjectInfo, error)
}

// ModuleHandler serves the modules of the current menu under /modules and
// /menu. Modules created through the API are stored in Store; the rest of the
// menu comes from the built-in records or the menu directory.
type ModuleHandler struct {
	Registry  *modules.Registry
	Store     repository.ModuleStore
	Menus     *menu.Holder
	Publisher Publisher // nil when object storage is not configured
	Logger    zerolog.Logger
}

type moduleSummary struct {
	Label  string `json:"label"`
	Type   string `json:"type"`
	Kind   string `json:"kind"`
	PSetID string `json:"pset_id"`
	Params int    `json:"params"`
	Stored bool   `json:"stored"`
}

func summarize(mod *pset.Module, stored bool) moduleSummary {
	return moduleSummary{
		Label:  mod.Label(),
		Type:   mod.Type(),
		Kind:   string(mod.Kind()),
		PSetID: mod.ID(),
		Params: mod.Len(),
		Stored: stored,
	}
}

// ListModules returns a summary of every module of the menu (GET /modules).
func (h *ModuleHandler) ListModules(c echo.Context) error {
	m := h.Menus.Load()
	mods := m.Modules()
	out := make([]moduleSummary, 0, len(mods))
	for _, mod := range mods {
		out = append(out, summarize(mod, m.IsStored(mod.Label())))
	}
	return response.OK(c, map[string]any{"menu": m.Name, "modules": out}, "")
}

// GetModule returns one module with all its parameters (GET /modules/:label).
func (h *ModuleHandler) GetModule(c echo.Context) error {
	mod, err := h.Menus.Load().Get(c.Param("label"))
	if err != nil {
		return response.NotFound(c, "module not found", err.Error())
	}
	return response.OK(c, mod, "")
}

// GetModuleCfi returns the canonical configuration fragment of one module
// (GET /modules/:label/cfi).
func (h *ModuleHandler) GetModuleCfi(c echo.Context) error {
	mod, err := h.Menus.Load().Get(c.Param("label"))
	if err != nil {
		return response.NotFound(c, "module not found", err.Error())
	}
	return c.Blob(http.StatusOK, cfiContentType, mod.Serialize())
}

// GetDependencies returns the labels one module reads from
// (GET /modules/:label/dependencies).
func (h *ModuleHandler) GetDependencies(c echo.Context) error {
	label := c.Param("label")
	deps, err := h.Menus.Load().Dependencies(label)
	if err != nil {
		return response.NotFound(c, "module not found", err.Error())
	}
	return response.OK(c, map[string]any{"label": label, "dependencies": deps}, "")
}

// decodeModule reads a module from the request body. JSON and YAML bodies use
// the document form; anything else is parsed as a configuration fragment.
func decodeModule(c echo.Context) (*pset.Module, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	mod := &pset.Module{}
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		err = json.Unmarshal(body, mod)
	case strings.Contains(ctype, "yaml"):
		err = yaml.Unmarshal(body, mod)
	default:
		mod, err = pset.Parse(body)
	}
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func validationFailed(err error) bool {
	return errors.Is(err, modules.ErrUnknownModuleType) ||
		errors.Is(err, modules.ErrSchemaMismatch) ||
		errors.Is(err, modules.ErrInvalidParameters)
}

// CreateModule validates a module against its type and adds it to the menu
// (POST /modules).
func (h *ModuleHandler) CreateModule(c echo.Context) error {
	mod, err := decodeModule(c)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return response.BadRequest(c, "invalid module body", err.Error())
	}
	if err := h.Registry.Validate(mod); err != nil {
		if validationFailed(err) {
			return response.Unprocessable(c, "module rejected", err.Error())
		}
		return response.InternalError(c, "validate module failed", err.Error())
	}

	m := h.Menus.Load()
	if _, err := m.Get(mod.Label()); err == nil {
		return response.Conflict(c, "module already exists", mod.Label())
	}
	rec := model.NewModuleRecord(m.Name, mod)
	if err := h.Store.Create(c.Request().Context(), rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateLabel) {
			return response.Conflict(c, "module already exists", err.Error())
		}
		return response.InternalError(c, "store module failed", err.Error())
	}
	if err := m.AddStored(mod); err != nil {
		return response.Conflict(c, "module already exists", err.Error())
	}

	var unresolved []menu.Unresolved
	for _, u := range m.Unresolved() {
		if u.Module == mod.Label() {
			unresolved = append(unresolved, u)
		}
	}
	h.Logger.Info().
		Str("label", mod.Label()).
		Str("type", mod.Type()).
		Str("pset_id", rec.PSetID).
		Int("unresolved", len(unresolved)).
		Msg("module created")
	return response.Created(c, map[string]any{
		"module":     summarize(mod, true),
		"id":         rec.ID,
		"unresolved": unresolved,
	}, "")
}

// DeleteModule removes a stored module (DELETE /modules/:label). Modules that
// come from the built-in records or the menu directory cannot be deleted.
func (h *ModuleHandler) DeleteModule(c echo.Context) error {
	label := c.Param("label")
	m := h.Menus.Load()
	deleted, err := h.Store.DeleteByLabel(c.Request().Context(), m.Name, label)
	if err != nil {
		return response.InternalError(c, "delete module failed", err.Error())
	}
	if !deleted {
		if _, err := m.Get(label); err == nil {
			return response.Conflict(c, "module is not stored", label)
		}
		return response.NotFound(c, "module not found", label)
	}
	if !m.RemoveStored(label) {
		h.Logger.Warn().Str("label", label).Msg("deleted stored module was shadowed by menu")
	}
	h.Logger.Info().Str("label", label).Msg("module deleted")
	return response.NoContent(c)
}

// PublishModule uploads the fragment of one module to object storage
// (POST /modules/:label/publish).
func (h *ModuleHandler) PublishModule(c echo.Context) error {
	if h.Publisher == nil {
		return response.Unavailable(c, "object storage not configured", "storage.o3 is not set")
	}
	m := h.Menus.Load()
	mod, err := m.Get(c.Param("label"))
	if err != nil {
		return response.NotFound(c, "module not found", err.Error())
	}
	key, err := h.Publisher.PublishModule(c.Request().Context(), m.Name, mod)
	if err != nil {
		return response.InternalError(c, "publish failed", err.Error())
	}
	h.Logger.Info().Str("label", mod.Label()).Str("key", key).Msg("module published")
	return response.OK(c, map[string]any{"key": key, "pset_id": mod.ID()}, "published")
}

// ListPublished lists the published versions of one module
// (GET /modules/:label/published).
func (h *ModuleHandler) ListPublished(c echo.Context) error {
	if h.Publisher == nil {
		return response.Unavailable(c, "object storage not configured", "storage.o3 is not set")
	}
	m := h.Menus.Load()
	label := c.Param("label")
	objects, err := h.Publisher.ListPublished(c.Request().Context(), m.Name, label)
	if err != nil {
		return response.InternalError(c, "list published failed", err.Error())
	}
	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	return response.OK(c, map[string]any{"label": label, "objects": objects}, "")
}

// ResolveMenu reports every reference of the menu that does not resolve
// (GET /menu/resolve).
func (h *ModuleHandler) ResolveMenu(c echo.Context) error {
	m := h.Menus.Load()
	unresolved := m.Unresolved()
	if unresolved == nil {
		unresolved = []menu.Unresolved{}
	}
	return response.OK(c, map[string]any{
		"menu":       m.Name,
		"modules":    m.Len(),
		"resolved":   len(unresolved) == 0,
		"unresolved": unresolved,
	}, "")
}
