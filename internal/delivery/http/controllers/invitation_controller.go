package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"mojotix/internal/delivery/http/helpers"
	"mojotix/internal/delivery/http/middleware"
	"mojotix/internal/domain"
)

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// BulkInviteRequest is the request body for POST /events/{eventID}/invitations.
type BulkInviteRequest struct {
	Emails []string `json:"emails"`
}

// Validate implements Validator.
func (b BulkInviteRequest) Validate() []string {
	if len(b.Emails) == 0 {
		return []string{"emails must not be empty"}
	}
	return nil
}

// BulkInviteResult reports the outcome of a bulk invite: addresses invited and
// addresses skipped, with the reason for each skip.
type BulkInviteResult struct {
	Invited []string               `json:"invited"`
	Failed  []domain.InviteFailure `json:"failed"`
}

// BulkInviteSuccessResponse is the success response envelope for POST /events/{eventID}/invitations (200).
type BulkInviteSuccessResponse struct {
	Data  *BulkInviteResult `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// BulkInvite godoc
// @Summary Invite people to a private event
// @Description Creates a pending invitation and sends an invitation email for each address. Invalid or already-invited addresses are reported in failed without aborting the batch. Creator or admin only.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param invitations body BulkInviteRequest true "Addresses to invite"
// @Success 200 {object} controllers.BulkInviteSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) BulkInvite(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req BulkInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	invited, failed, err := c.Service.BulkInvite(r.Context(), requester, eventID, req.Emails)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event creator may invite")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	if invited == nil {
		invited = []string{}
	}
	if failed == nil {
		failed = []domain.InviteFailure{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &BulkInviteResult{Invited: invited, Failed: failed})
}

// RespondRequest is the request body for POST /invitations/{invitationID}/respond.
type RespondRequest struct {
	Accept *bool `json:"accept"`
}

// Validate implements Validator.
func (rr RespondRequest) Validate() []string {
	if rr.Accept == nil {
		return []string{"accept is required"}
	}
	return nil
}

// InvitationSuccessResponse is the success response envelope for a single invitation.
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// Respond godoc
// @Summary Accept or decline an invitation
// @Description Records the authenticated invitee's response. Only the invited address may respond, and only while the invitation is pending.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Param response body RespondRequest true "Accept or decline"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already responded)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/respond [post]
func (c *InvitationController) Respond(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	inv, err := c.Service.Respond(r.Context(), requester, invitationID, *req.Accept)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
		case errors.Is(err, domain.ErrAlreadyResponded):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "invitation has already been responded to")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// InvitationListSuccessResponse is the success response envelope for an invitation list.
type InvitationListSuccessResponse struct {
	Data  []*domain.Invitation `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListEventInvitations godoc
// @Summary List an event's invitations
// @Description Returns every invitation for the event, newest first. Creator or admin only; requesters who may not view the event get 404.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.InvitationListSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListEventInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	invs, err := c.Service.ListEventInvitations(r.Context(), requester, eventID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event creator may list invitations")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invs)
}

// Revoke godoc
// @Summary Revoke an invitation
// @Description Deletes the invitation regardless of status. An accepted invitee loses access to the private event. Admin only.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 204 "invitation deleted"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [delete]
func (c *InvitationController) Revoke(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	if err := c.Service.Revoke(r.Context(), requester, invitationID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "admin access required")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
