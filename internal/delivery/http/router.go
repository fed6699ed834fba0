package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"iftarmatch/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps every route that needs a verified caller; authorization
// itself happens in the services.
func NewRouter(
	authController *controllers.AuthController,
	invitationController *controllers.InvitationController,
	directoryController *controllers.DirectoryController,
	requireAuth func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/login-code/request", authController.RequestLoginCode)
	mux.HandleFunc("POST /auth/login-code/verify", authController.VerifyLoginCode)
	mux.HandleFunc("GET /auth/google/login", authController.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authController.GoogleCallback)

	// Invitations
	mux.HandleFunc("POST /invitations", requireAuth(invitationController.Create))
	mux.HandleFunc("GET /invitations", requireAuth(invitationController.List))
	mux.HandleFunc("GET /invitations/{invitationID}", requireAuth(invitationController.Get))
	mux.HandleFunc("POST /invitations/{invitationID}/accept", requireAuth(invitationController.Accept))
	mux.HandleFunc("POST /invitations/{invitationID}/reject", requireAuth(invitationController.Reject))
	mux.HandleFunc("PATCH /invitations/{invitationID}", requireAuth(invitationController.Edit))
	mux.HandleFunc("POST /invitations/{invitationID}/no-show", requireAuth(invitationController.MarkNoShow))
	mux.HandleFunc("DELETE /invitations/{invitationID}", requireAuth(invitationController.Delete))

	// Availability
	mux.HandleFunc("POST /unavailability/toggle", requireAuth(invitationController.ToggleUnavailability))
	mux.HandleFunc("GET /unavailability", requireAuth(invitationController.ListUnavailability))
	mux.HandleFunc("GET /calendar/{date}", requireAuth(invitationController.CalendarDay))

	// Directory
	mux.HandleFunc("GET /groups", requireAuth(directoryController.ListGroups))
	mux.HandleFunc("POST /groups", requireAuth(directoryController.CreateGroup))
	mux.HandleFunc("PUT /groups/{groupID}", requireAuth(directoryController.UpdateGroup))
	mux.HandleFunc("DELETE /groups/{groupID}", requireAuth(directoryController.DeleteGroup))
	mux.HandleFunc("GET /hosts", requireAuth(directoryController.ListHosts))
	mux.HandleFunc("POST /hosts", requireAuth(directoryController.AddHost))
	mux.HandleFunc("DELETE /hosts/{hostID}", requireAuth(directoryController.RemoveHost))
	mux.HandleFunc("GET /assignments", requireAuth(directoryController.ListAssignments))
	mux.HandleFunc("PUT /assignments/{groupName}", requireAuth(directoryController.AssignGroupEmail))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
