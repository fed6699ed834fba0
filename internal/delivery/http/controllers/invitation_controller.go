package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"iftarmatch/internal/delivery/http/helpers"
	"iftarmatch/internal/delivery/http/middleware"
	"iftarmatch/internal/domain"
)

const dateLayout = "2006-01-02"

func validDate(date string) bool {
	_, err := time.Parse(dateLayout, date)
	return err == nil
}

// CreateInvitationRequest is the request body for POST /invitations.
type CreateInvitationRequest struct {
	Date           string `json:"date"`
	GuestGroupName string `json:"guest_group_name"`
}

// Validate implements Validator.
func (c CreateInvitationRequest) Validate() []string {
	var errs []string
	if c.Date == "" {
		errs = append(errs, "date is required")
	} else if !validDate(c.Date) {
		errs = append(errs, "date must be in YYYY-MM-DD format")
	}
	if strings.TrimSpace(c.GuestGroupName) == "" {
		errs = append(errs, "guest_group_name is required")
	}
	return errs
}

// RejectInvitationRequest is the request body for POST /invitations/{invitationID}/reject.
type RejectInvitationRequest struct {
	Reason string `json:"reason"`
}

// EditInvitationRequest is the request body for PATCH /invitations/{invitationID}.
type EditInvitationRequest struct {
	ParticipantCount int  `json:"participant_count"`
	IsDelivery       bool `json:"is_delivery"`
}

// Validate implements Validator.
func (e EditInvitationRequest) Validate() []string {
	if e.ParticipantCount <= 0 {
		return []string{"participant_count must be positive"}
	}
	return nil
}

// ToggleUnavailabilityRequest is the request body for POST /unavailability/toggle.
type ToggleUnavailabilityRequest struct {
	Date           string `json:"date"`
	GuestGroupName string `json:"guest_group_name"`
}

// Validate implements Validator.
func (t ToggleUnavailabilityRequest) Validate() []string {
	var errs []string
	if t.Date == "" {
		errs = append(errs, "date is required")
	} else if !validDate(t.Date) {
		errs = append(errs, "date must be in YYYY-MM-DD format")
	}
	if strings.TrimSpace(t.GuestGroupName) == "" {
		errs = append(errs, "guest_group_name is required")
	}
	return errs
}

// InvitationSuccessResponse is the success envelope carrying a single invitation.
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListInvitationsSuccessResponse is the success envelope for GET /invitations (200).
type ListInvitationsSuccessResponse struct {
	Data  []*domain.Invitation `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ToggleUnavailabilityResponse is the data payload for POST /unavailability/toggle (200).
type ToggleUnavailabilityResponse struct {
	Date           string `json:"date"`
	GuestGroupName string `json:"guest_group_name"`
	Unavailable    bool   `json:"unavailable"`
}

// CalendarDayResponse is the data payload for GET /calendar/{date} (200).
type CalendarDayResponse struct {
	Date         string   `json:"date"`
	BookedGroups []string `json:"booked_groups"`
	FullyBooked  bool     `json:"fully_booked"`
}

// StatusResponse is the generic data payload for delete-style operations.
type StatusResponse struct {
	Status string `json:"status"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
	Slots   domain.SlotRegistry
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, slots domain.SlotRegistry) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
		Slots:   slots,
	}
}

// Create godoc
// @Summary Create an invitation
// @Description Books a pending invitation for a guest group on a date. The caller must be a registered host; participant count and delivery flag are copied from the group.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateInvitationRequest true "Date and guest group"
// @Success 201 {object} controllers.InvitationSuccessResponse "data contains the created invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown group)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slot taken or duplicate booking)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [post]
func (c *InvitationController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.Create(r.Context(), email, req.Date, req.GuestGroupName)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// List godoc
// @Summary List invitations visible to the caller
// @Description Admins see every invitation, group representatives their group's, hosts their own.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListInvitationsSuccessResponse "data is an array of invitations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invitations, err := c.Service.ListForActor(r.Context(), email)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if invitations == nil {
		invitations = []*domain.Invitation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invitations)
}

// Get godoc
// @Summary Get an invitation by ID
// @Description Returns one invitation. Visible to admins, the owning host, and the group's representative.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the invitation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [get]
func (c *InvitationController) Get(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.Get(r.Context(), invitationID, email)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Accept godoc
// @Summary Accept a pending invitation
// @Description Moves a pending invitation to accepted. Only an admin or the group's representative may accept. The host is notified by email.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the accepted invitation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state (not pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/accept [post]
func (c *InvitationController) Accept(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.Accept(r.Context(), invitationID, email)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Reject godoc
// @Summary Reject a pending invitation
// @Description Moves a pending invitation to rejected with an optional reason; a default message is stored when the reason is empty. The slot becomes bookable again.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Param body body RejectInvitationRequest false "Optional reason"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the rejected invitation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state (not pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/reject [post]
func (c *InvitationController) Reject(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	var req RejectInvitationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.Reject(r.Context(), invitationID, email, req.Reason)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Edit godoc
// @Summary Edit invitation details
// @Description Updates participant count and delivery flag. Only the owning host or an admin may edit; status is unchanged.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Param body body EditInvitationRequest true "New participant count and delivery flag"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the updated invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [patch]
func (c *InvitationController) Edit(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	var req EditInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.Edit(r.Context(), invitationID, email, req.ParticipantCount, req.IsDelivery)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// MarkNoShow godoc
// @Summary Report that the guests did not attend
// @Description Moves an accepted invitation to no_show and alerts every admin by email. Only the owning host or an admin may report.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the updated invitation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state (not accepted)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/no-show [post]
func (c *InvitationController) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.MarkNoShow(r.Context(), invitationID, email)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Delete godoc
// @Summary Delete a rejected invitation
// @Description Removes a rejected invitation row. Admin only; invitations in other states must go through the lifecycle.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state (not rejected)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [delete]
func (c *InvitationController) Delete(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), invitationID, email); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// ToggleUnavailability godoc
// @Summary Toggle a group's unavailability on a date
// @Description Flips the group's blocked flag for the date. Creating a block fails while the group holds a non-rejected invitation that day. Only an admin or the group's representative may toggle.
// @Tags unavailability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ToggleUnavailabilityRequest true "Date and guest group"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the resulting unavailable flag"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (active invitation on the date)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /unavailability/toggle [post]
func (c *InvitationController) ToggleUnavailability(w http.ResponseWriter, r *http.Request) {
	var req ToggleUnavailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	unavailable, err := c.Service.ToggleUnavailability(r.Context(), email, req.Date, req.GuestGroupName)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleUnavailabilityResponse{
		Date:           req.Date,
		GuestGroupName: req.GuestGroupName,
		Unavailable:    unavailable,
	})
}

// ListUnavailability godoc
// @Summary List a group's blocked dates
// @Description Returns the group's unavailability declarations. Only an admin or the group's representative may list.
// @Tags unavailability
// @Produce json
// @Security BearerAuth
// @Param group query string true "Guest group name"
// @Success 200 {object} helpers.APIResponse "data is an array of unavailability rows"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /unavailability [get]
func (c *InvitationController) ListUnavailability(w http.ResponseWriter, r *http.Request) {
	groupName := strings.TrimSpace(r.URL.Query().Get("group"))
	if groupName == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing group query parameter")
		return
	}
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	blocks, err := c.Service.ListGroupUnavailability(r.Context(), email, groupName)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if blocks == nil {
		blocks = []*domain.GroupUnavailability{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, blocks)
}

// CalendarDay godoc
// @Summary Availability summary for a date
// @Description Returns the group names booked or unavailable on the date, plus whether every defined group is taken.
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} helpers.APIResponse "data contains booked_groups and fully_booked"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar/{date} [get]
func (c *InvitationController) CalendarDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validDate(date) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	booked, err := c.Slots.ListBookedGroups(r.Context(), date)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	full, err := c.Slots.IsDateFullyBooked(r.Context(), date)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if booked == nil {
		booked = []string{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CalendarDayResponse{
		Date:         date,
		BookedGroups: booked,
		FullyBooked:  full,
	})
}
