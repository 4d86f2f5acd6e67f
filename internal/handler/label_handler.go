// internal/handler/label_handler.go
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/driver"
	"label-service/internal/label"
	"label-service/internal/model"
	"label-service/internal/protocol"
	"label-service/internal/raster"
	"label-service/internal/service"
	"label-service/internal/utils"
)

// LabelHandler serves the print, preview, status and config endpoints.
// Status, print and config responses are plain JSON so another instance
// can relay to this one.
type LabelHandler struct {
	service *service.PrintService
	logger  *utils.ServiceLogger
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(printService *service.PrintService, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{
		service: printService,
		logger:  utils.NewServiceLogger(logger, "label-handler"),
	}
}

// PrintResponse is returned by PUT /print
type PrintResponse struct {
	Printed int `json:"printed"`
}

// GetStatus returns the status of every configured printer
// @Summary Printer status
// @Description Media and readiness per printer, null when a printer did not answer
// @Tags Status
// @Produce json
// @Success 200 {object} map[string]model.PrinterStatus
// @Router /status [get]
func (h *LabelHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status(c.Request.Context()))
}

// Print renders and prints a label
// @Summary Print a label
// @Tags Labels
// @Accept json
// @Produce json
// @Param request body model.PrintRequest true "Print request"
// @Success 200 {object} PrintResponse
// @Failure 400 {object} utils.APIResponse "Invalid label or unknown printer"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /print [put]
func (h *LabelHandler) Print(c *gin.Context) {
	var req model.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	printed, err := h.service.Print(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, "Print failed", err)
		return
	}

	c.JSON(http.StatusOK, PrintResponse{Printed: printed})
}

// Preview renders a label to a PNG without printing it
// @Summary Preview a label
// @Tags Labels
// @Accept json
// @Produce json
// @Param request body model.PrintRequest true "Label to preview, count is ignored"
// @Param max_width query int false "Scale the preview down to this width in pixels"
// @Success 200 {object} model.PreviewResponse
// @Failure 400 {object} utils.APIResponse
// @Router /preview [put]
func (h *LabelHandler) Preview(c *gin.Context) {
	maxWidth := 0
	if v := c.Query("max_width"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid max_width", err)
			return
		}
		maxWidth = parsed
	}

	var req model.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), &req.Label, maxWidth)
	if err != nil {
		h.writeError(c, "Preview failed", err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// GetConfig lists tapes, printers and fonts
// @Summary Service configuration
// @Tags Labels
// @Produce json
// @Success 200 {object} model.ServiceConfig
// @Router /config [get]
func (h *LabelHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Config())
}

// ListJobs returns recent print jobs
// @Summary Print job history
// @Tags Jobs
// @Produce json
// @Param printer query string false "Only jobs sent to this printer"
// @Param limit query int false "Maximum number of jobs"
// @Success 200 {object} utils.APIResponse{data=[]model.PrintJob}
// @Failure 400 {object} utils.APIResponse
// @Router /jobs [get]
func (h *LabelHandler) ListJobs(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			utils.ValidationErrorResponse(c, map[string]string{"limit": "must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	jobs, err := h.service.Jobs(c.Request.Context(), c.Query("printer"), limit)
	if err != nil {
		h.writeError(c, "Failed to list print jobs", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Print jobs retrieved", jobs)
}

// writeError maps domain errors to HTTP status codes
func (h *LabelHandler) writeError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, driver.ErrPrinterNotFound),
		errors.Is(err, label.ErrInvalidLabel),
		errors.Is(err, raster.ErrInvalidHeight),
		errors.Is(err, protocol.ErrUnsupportedScheme):
		status = http.StatusBadRequest
	case errors.Is(err, protocol.ErrTransmission):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.Error(err), zap.String("request_id", c.GetString("request_id")))
	} else {
		h.logger.Warn(message, zap.Error(err), zap.String("request_id", c.GetString("request_id")))
	}

	utils.ErrorResponse(c, status, message, err)
}
