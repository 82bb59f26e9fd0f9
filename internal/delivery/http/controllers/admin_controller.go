package controllers

import (
	"log/slog"
	"net/http"

	"mojotix/internal/delivery/http/helpers"
	"mojotix/internal/domain"
)

type AdminController struct {
	Logger     *slog.Logger
	Reconciler domain.AttendanceReconciler
}

func NewAdminController(logger *slog.Logger, reconciler domain.AttendanceReconciler) *AdminController {
	return &AdminController{
		Logger:     logger,
		Reconciler: reconciler,
	}
}

// MarkAttendedResponse is the response body for POST /admin/mark-attended.
type MarkAttendedResponse struct {
	Message             string                        `json:"message"`
	TotalTicketsUpdated int64                         `json:"totalTicketsUpdated"`
	Results             []domain.ReconcileEventResult `json:"results"`
}

// MarkAttended godoc
// @Summary Reconcile attendance for ended events
// @Description Marks every unattended ticket of each ended event as attended. Safe to call repeatedly; a rerun touches nothing. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MarkAttendedResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/mark-attended [post]
func (c *AdminController) MarkAttended(w http.ResponseWriter, r *http.Request) {
	result, err := c.Reconciler.Run(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	results := result.Results
	if results == nil {
		results = []domain.ReconcileEventResult{}
	}
	helpers.WriteJSON(w, http.StatusOK, MarkAttendedResponse{
		Message:             "attendance reconciliation complete",
		TotalTicketsUpdated: result.TotalTicketsUpdated,
		Results:             results,
	})
}
