package records

import (
	"errors"
	"io"
	"strconv"

	"record-sync/core/history"
	"record-sync/core/logger"
	"record-sync/core/reconcile"
	"record-sync/core/remote"
	"record-sync/core/storage"
	"record-sync/core/workbook"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ArchiveKeyHeader carries the storage key of an archived export.
const ArchiveKeyHeader = "X-Archive-Key"

// Handler handles HTTP requests for records.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the records routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/records")
	group.Get("/", h.HandleListEntities)
	group.Post("/:entity/import", h.HandleImport)
	group.Get("/:entity/export", h.HandleExport)
	group.Get("/:entity/runs", h.HandleListRuns)
}

// HandleListEntities lists the entity kinds that can be synced.
// @Summary List Entities
// @Description List the entity kinds with their spreadsheet columns.
// @Tags records
// @Produce json
// @Success 200 {array} reconcile.Entity "Entities"
// @Router /records [get]
func (h *Handler) HandleListEntities(c *fiber.Ctx) error {
	return c.JSON(h.service.Entities())
}

// HandleImport syncs an uploaded workbook into the remote store.
// @Summary Import Workbook
// @Description Reconcile the uploaded workbook with the remote records: remove, create and update in bulk.
// @Tags records
// @Accept multipart/form-data
// @Produce json
// @Param entity path string true "Entity (e.g. 'price-list')"
// @Param file formData file true "Workbook (.xlsx)"
// @Param dry_run formData bool false "Plan only, send nothing"
// @Success 200 {object} records.ImportResult "Import Result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown Entity"
// @Failure 502 {object} map[string]interface{} "Remote Store Failure"
// @Router /records/{entity}/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	name := c.Params("entity")
	l := logger.WithRayID(h.service.logger, c).With(zap.String("entity", name))

	dryRun := false
	if raw := c.FormValue("dry_run", c.Query("dry_run")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dry_run must be a boolean"})
		}
		dryRun = v
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing workbook file"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.service.Import(c.UserContext(), ImportRequest{
		Entity:  name,
		Data:    data,
		Source:  fh.Filename,
		DryRun:  dryRun,
		Archive: true,
	})
	if err != nil {
		l.Error("Import failed", zap.Error(err))
		body := fiber.Map{"error": err.Error()}
		if result != nil {
			body["result"] = result
		}
		return c.Status(statusOf(err)).JSON(body)
	}

	return c.JSON(result)
}

// HandleExport downloads the current records as a workbook.
// @Summary Export Workbook
// @Description Download the current remote records of an entity as an xlsx workbook.
// @Tags records
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param entity path string true "Entity (e.g. 'price-list')"
// @Param archive query bool false "Keep a copy in storage"
// @Success 200 {file} file "Workbook"
// @Failure 404 {object} map[string]string "Unknown Entity"
// @Failure 502 {object} map[string]string "Remote Store Failure"
// @Router /records/{entity}/export [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	name := c.Params("entity")
	l := logger.WithRayID(h.service.logger, c).With(zap.String("entity", name))

	result, err := h.service.Export(c.UserContext(), name, c.QueryBool("archive"))
	if err != nil {
		l.Error("Export failed", zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Attachment(result.FileName)
	c.Set(fiber.HeaderContentType, storage.WorkbookContentType)
	if result.ArchiveKey != "" {
		c.Set(ArchiveKeyHeader, result.ArchiveKey)
	}
	return c.Send(result.Data)
}

// HandleListRuns lists the recorded sync runs of an entity.
// @Summary List Sync Runs
// @Description List the latest sync runs of an entity, newest first.
// @Tags records
// @Produce json
// @Param entity path string true "Entity (e.g. 'price-list')"
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} history.View "Runs"
// @Failure 404 {object} map[string]string "Unknown Entity"
// @Failure 503 {object} map[string]string "History Disabled"
// @Router /records/{entity}/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	name := c.Params("entity")
	l := logger.WithRayID(h.service.logger, c).With(zap.String("entity", name))

	runs, err := h.service.Runs(c.UserContext(), name, c.QueryInt("limit", history.DefaultLimit))
	if err != nil {
		l.Error("Listing runs failed", zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(runs)
}

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	var (
		queryErr  *reconcile.QueryError
		bulkErr   *reconcile.BulkOperationError
		remoteErr *remote.StatusError
	)

	switch {
	case errors.Is(err, reconcile.ErrUnknownEntity), errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, workbook.ErrInvalidWorkbook):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrHistoryDisabled), errors.Is(err, ErrArchiveDisabled):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &queryErr), errors.As(err, &bulkErr), errors.As(err, &remoteErr),
		errors.Is(err, reconcile.ErrEmptySchema), errors.Is(err, reconcile.ErrMissingLookup):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
