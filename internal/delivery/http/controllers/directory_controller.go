package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"iftarmatch/internal/delivery/http/helpers"
	"iftarmatch/internal/delivery/http/middleware"
	"iftarmatch/internal/domain"
)

// GroupRequest is the request body for POST /groups and PUT /groups/{groupID}.
type GroupRequest struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	ParticipantCount int     `json:"participant_count"`
	IsDelivery       bool    `json:"is_delivery"`
	Color            *string `json:"color"`
}

// Validate implements Validator.
func (g GroupRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(g.Name) == "" {
		errs = append(errs, "name is required")
	}
	if g.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(g.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if g.ParticipantCount <= 0 {
		errs = append(errs, "participant_count must be positive")
	}
	return errs
}

// AddHostRequest is the request body for POST /hosts.
type AddHostRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements Validator.
func (a AddHostRequest) Validate() []string {
	var errs []string
	if a.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(a.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// AssignGroupEmailRequest is the request body for PUT /assignments/{groupName}.
type AssignGroupEmailRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (a AssignGroupEmailRequest) Validate() []string {
	if a.Email == "" {
		return []string{"email is required"}
	}
	if !emailRegex.MatchString(strings.TrimSpace(a.Email)) {
		return []string{"email must be a valid email address"}
	}
	return nil
}

// ListGroupsSuccessResponse is the success envelope for GET /groups (200).
type ListGroupsSuccessResponse struct {
	Data  []*domain.GuestGroup `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListHostsSuccessResponse is the success envelope for GET /hosts (200).
type ListHostsSuccessResponse struct {
	Data  []*domain.Host    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type DirectoryController struct {
	Logger  *slog.Logger
	Service domain.DirectoryService
}

func NewDirectoryController(logger *slog.Logger, svc domain.DirectoryService) *DirectoryController {
	return &DirectoryController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *DirectoryController) actorEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return email, true
}

// ListGroups godoc
// @Summary List guest groups
// @Description Returns every guest group. Open to any authenticated caller with a resolved role.
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListGroupsSuccessResponse "data is an array of guest groups"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups [get]
func (c *DirectoryController) ListGroups(w http.ResponseWriter, r *http.Request) {
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	groups, err := c.Service.ListGroups(r.Context(), email)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if groups == nil {
		groups = []*domain.GuestGroup{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, groups)
}

// CreateGroup godoc
// @Summary Create a guest group
// @Description Creates a group and assigns its contact email as the representative. Admin only.
// @Tags directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GroupRequest true "Group data"
// @Success 201 {object} helpers.APIResponse "data contains the created group"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate name)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups [post]
func (c *DirectoryController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	g := &domain.GuestGroup{
		Name:             req.Name,
		Email:            req.Email,
		ParticipantCount: req.ParticipantCount,
		IsDelivery:       req.IsDelivery,
		Color:            req.Color,
	}
	if err := c.Service.CreateGroup(r.Context(), email, g); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, g)
}

// UpdateGroup godoc
// @Summary Update a guest group
// @Description Rewrites the group. A rename cascades to the assignment and existing invitations. Admin only.
// @Tags directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param body body GroupRequest true "New group data"
// @Success 200 {object} helpers.APIResponse "data contains the updated group"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate name)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID} [put]
func (c *DirectoryController) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	if groupID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing groupID")
		return
	}
	var req GroupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	g := &domain.GuestGroup{
		ID:               groupID,
		Name:             req.Name,
		Email:            req.Email,
		ParticipantCount: req.ParticipantCount,
		IsDelivery:       req.IsDelivery,
		Color:            req.Color,
	}
	if err := c.Service.UpdateGroup(r.Context(), email, groupID, g); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, g)
}

// DeleteGroup godoc
// @Summary Delete a guest group
// @Description Removes the group, its assignment, and its invitations. Admin only.
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID} [delete]
func (c *DirectoryController) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	if groupID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing groupID")
		return
	}
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteGroup(r.Context(), email, groupID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// ListHosts godoc
// @Summary List hosts
// @Description Returns every registered host. Admin only.
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListHostsSuccessResponse "data is an array of hosts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts [get]
func (c *DirectoryController) ListHosts(w http.ResponseWriter, r *http.Request) {
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	hosts, err := c.Service.ListHosts(r.Context(), email)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if hosts == nil {
		hosts = []*domain.Host{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, hosts)
}

// AddHost godoc
// @Summary Register a host by hand
// @Description Adds a host record ahead of their first Google sign-in. Admin only.
// @Tags directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddHostRequest true "Host email and name"
// @Success 201 {object} helpers.APIResponse "data contains the created host"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate email)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts [post]
func (c *DirectoryController) AddHost(w http.ResponseWriter, r *http.Request) {
	var req AddHostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	host, err := c.Service.AddHost(r.Context(), email, req.Email, req.Name)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, host)
}

// RemoveHost godoc
// @Summary Remove a host
// @Description Deletes a host record and, through the schema, their invitations. Admin only; admin accounts cannot be removed.
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Param hostID path string true "Host ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hosts/{hostID} [delete]
func (c *DirectoryController) RemoveHost(w http.ResponseWriter, r *http.Request) {
	hostID := r.PathValue("hostID")
	if hostID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing hostID")
		return
	}
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	if err := c.Service.RemoveHost(r.Context(), email, hostID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "removed"})
}

// ListAssignments godoc
// @Summary List group assignments
// @Description Returns the mapping of guest groups to representative emails. Admin only.
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of assignments"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /assignments [get]
func (c *DirectoryController) ListAssignments(w http.ResponseWriter, r *http.Request) {
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	assignments, err := c.Service.ListAssignments(r.Context(), email)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if assignments == nil {
		assignments = []*domain.GroupAssignment{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignments)
}

// AssignGroupEmail godoc
// @Summary Assign a group's representative email
// @Description Points the group at a new representative email, replacing any previous one. Admin only.
// @Tags directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupName path string true "Guest group name"
// @Param body body AssignGroupEmailRequest true "Representative email"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown group)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /assignments/{groupName} [put]
func (c *DirectoryController) AssignGroupEmail(w http.ResponseWriter, r *http.Request) {
	groupName := r.PathValue("groupName")
	if groupName == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing groupName")
		return
	}
	var req AssignGroupEmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email, ok := c.actorEmail(w, r)
	if !ok {
		return
	}
	if err := c.Service.AssignGroupEmail(r.Context(), email, groupName, req.Email); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "assigned"})
}
