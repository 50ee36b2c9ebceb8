package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/services"
	"github.com/productivitybrain/core/internal/application/summary"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

// maxBodyBytes bounds tool arguments and component props
const maxBodyBytes = 1 << 20

// ToolHandler serves the tool registry
type ToolHandler struct {
	tools  *registry.Tools
	logger *logger.Logger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(tools *registry.Tools, logger *logger.Logger) *ToolHandler {
	return &ToolHandler{
		tools:  tools,
		logger: logger,
	}
}

// ListTools handles listing tool descriptors
// @Summary List tools
// @Description List every registered tool with its input and output schema
// @Tags tools
// @Produce json
// @Success 200 {array} registry.Tool
// @Security BearerAuth
// @Router /tools [get]
func (h *ToolHandler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tools.List())
}

// CallTool handles invoking a tool
// @Summary Call a tool
// @Description Invoke a tool by name. The request body is the tool's arguments object.
// @Tags tools
// @Accept json
// @Produce json
// @Param name path string true "Tool name"
// @Param args body object false "Tool arguments"
// @Success 200 {object} ToolResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tools/{name} [post]
func (h *ToolHandler) CallTool(c echo.Context) error {
	name := c.Param("name")

	args, err := readBody(c)
	if err != nil {
		return err
	}

	result, err := h.tools.Invoke(c.Request().Context(), name, args)
	if err != nil {
		return dispatchError(h.logger, err)
	}

	return c.JSON(http.StatusOK, ToolResult{Tool: name, Result: result})
}

// ComponentHandler serves the component registry
type ComponentHandler struct {
	components *registry.Components
	logger     *logger.Logger
}

// NewComponentHandler creates a new component handler
func NewComponentHandler(components *registry.Components, logger *logger.Logger) *ComponentHandler {
	return &ComponentHandler{
		components: components,
		logger:     logger,
	}
}

// ListComponents handles listing component descriptors
// @Summary List components
// @Description List every registered component with its props schema and actions
// @Tags components
// @Produce json
// @Success 200 {array} registry.Component
// @Security BearerAuth
// @Router /components [get]
func (h *ComponentHandler) ListComponents(c echo.Context) error {
	return c.JSON(http.StatusOK, h.components.List())
}

// RenderComponent handles rendering a component
// @Summary Render a component
// @Description Validate props and render the component tree. The request body is the props object.
// @Tags components
// @Accept json
// @Produce json
// @Param name path string true "Component name"
// @Param props body object false "Component props"
// @Success 200 {object} RenderResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /components/{name}/render [post]
func (h *ComponentHandler) RenderComponent(c echo.Context) error {
	name := c.Param("name")

	props, err := readBody(c)
	if err != nil {
		return err
	}

	node, err := h.components.Render(c.Request().Context(), name, props)
	if err != nil {
		return dispatchError(h.logger, err)
	}

	return c.JSON(http.StatusOK, RenderResult{Component: name, Node: node})
}

// RunAction handles a component write-back
// @Summary Run a component action
// @Description Run a named action and return the refreshed render
// @Tags components
// @Accept json
// @Produce json
// @Param name path string true "Component name"
// @Param action path string true "Action name"
// @Param request body ActionRequest true "Props and action arguments"
// @Success 200 {object} RenderResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /components/{name}/actions/{action} [post]
func (h *ComponentHandler) RunAction(c echo.Context) error {
	name := c.Param("name")
	action := c.Param("action")

	body, err := readBody(c)
	if err != nil {
		return err
	}

	var req ActionRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: "Invalid request format"})
		}
	}

	node, err := h.components.Act(c.Request().Context(), name, action, req.Props, req.Args)
	if err != nil {
		return dispatchError(h.logger, err)
	}

	return c.JSON(http.StatusOK, RenderResult{Component: name, Action: action, Node: node})
}

// ContextHandler serves the ambient summary attached to dispatch requests
type ContextHandler struct {
	store       ports.Store
	summarizers []summary.Summarizer
}

// NewContextHandler creates a context handler. With no summarizers the
// defaults are used.
func NewContextHandler(store ports.Store, summarizers ...summary.Summarizer) *ContextHandler {
	if len(summarizers) == 0 {
		summarizers = summary.Defaults()
	}
	return &ContextHandler{
		store:       store,
		summarizers: summarizers,
	}
}

// GetContext handles computing the context summary
// @Summary Get context summary
// @Description Compute the key/value facts describing the current store
// @Tags context
// @Produce json
// @Success 200 {array} summary.Entry
// @Security BearerAuth
// @Router /context [get]
func (h *ContextHandler) GetContext(c echo.Context) error {
	return c.JSON(http.StatusOK, summary.Collect(c.Request().Context(), h.store, h.summarizers...))
}

// dispatchError maps registry and timer errors to HTTP errors
func dispatchError(log *logger.Logger, err error) error {
	var verr *registry.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
			Message: verr.Error(),
			Fields:  verr.Fields(),
		}).SetInternal(err)
	case errors.Is(err, registry.ErrNotRegistered), errors.Is(err, services.ErrTimerNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrorResponse{Message: err.Error()}).SetInternal(err)
	case errors.Is(err, services.ErrTimerCompleted):
		return echo.NewHTTPError(http.StatusConflict, ErrorResponse{Message: err.Error()}).SetInternal(err)
	case errors.Is(err, services.ErrTimersClosed):
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrorResponse{Message: err.Error()}).SetInternal(err)
	}

	log.Errorw("Dispatch failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"}).SetInternal(err)
}

func readBody(c echo.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: "Failed to read request body"})
	}
	if len(body) > maxBodyBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "Request body too large"})
	}
	return body, nil
}

// Request/Response types

// ActionRequest carries the props the component was rendered with and the
// arguments of the action
type ActionRequest struct {
	Props json.RawMessage `json:"props" swaggertype:"object"`
	Args  json.RawMessage `json:"args" swaggertype:"object"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

type RenderResult struct {
	Component string  `json:"component"`
	Action    string  `json:"action,omitempty"`
	Node      ui.Node `json:"node"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
