package cleanup

import (
	"errors"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/logger"
	"site-cleaner/core/manifest"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for cleanups.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the cleanup routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/cleanup")
	group.Post("/plan", h.HandlePlan)
	group.Post("/apply", h.HandleApply)
	group.Get("/history", h.HandleHistory)
	group.Get("/sources", h.HandleSources)
}

// HandlePlan computes a cleanup plan.
// @Summary Plan Cleanup
// @Description Lists the obsolete paths of a destination root without removing anything. Empty fields use the configured defaults. A destination must be the configured one or lie within cleaner.allowed_roots.
// @Tags cleanup
// @Accept json
// @Produce json
// @Param request body Request false "Destination, keep patterns and source"
// @Success 200 {object} Result "Plan"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown Source"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /cleanup/plan [post]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req, err := parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.service.Plan(c.Context(), req)
	if err != nil {
		l.Error("Cleanup plan failed", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleApply plans and applies a cleanup.
// @Summary Apply Cleanup
// @Description Removes the obsolete paths of a destination root. Set dry_run to only record the plan. A destination must be the configured one or lie within cleaner.allowed_roots.
// @Tags cleanup
// @Accept json
// @Produce json
// @Param request body Request false "Destination, keep patterns, source and dry_run"
// @Success 200 {object} Result "Applied plan"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown Source"
// @Failure 500 {object} map[string]interface{} "Removal failed; body names the path"
// @Router /cleanup/apply [post]
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req, err := parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	req.Origin = "http"
	if rid, ok := c.Locals("ray_id").(string); ok && rid != "" {
		req.Origin = "http:" + rid
	}

	result, err := h.service.Apply(c.Context(), req)
	if err != nil {
		l.Error("Cleanup apply failed", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleHistory lists recent cleanup runs.
// @Summary Cleanup History
// @Description Returns the most recent cleanup runs, newest first.
// @Tags cleanup
// @Produce json
// @Param limit query int false "Maximum number of runs (default 20, max 200)"
// @Success 200 {array} models.CleanupRun "Runs"
// @Failure 503 {object} map[string]string "No database configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /cleanup/history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	runs, err := h.service.History(c.Context(), c.QueryInt("limit", defaultHistoryLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(runs)
}

// HandleSources lists the configured manifest sources.
// @Summary List Sources
// @Tags cleanup
// @Produce json
// @Success 200 {object} map[string][]string "Source names"
// @Router /cleanup/sources [get]
func (h *Handler) HandleSources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"sources": h.service.Sources()})
}

func parseRequest(c *fiber.Ctx) (Request, error) {
	var req Request
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return req, err
	}
	return req, nil
}

// respondError maps service errors to status codes. Traversal and deletion errors
// carry the offending path in the body.
func respondError(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": err.Error()}

	var traversal *cleaner.TraversalError
	var deletion *cleaner.DeletionError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, manifest.ErrUnknownSource):
		return c.Status(fiber.StatusNotFound).JSON(body)
	case errors.Is(err, ErrHistoryUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	case errors.As(err, &traversal):
		body["path"] = traversal.Path
	case errors.As(err, &deletion):
		body["path"] = deletion.Path
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
