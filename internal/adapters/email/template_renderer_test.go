package email

import (
	"testing"

	"iftarmatch/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_Render(t *testing.T) {
	r := NewTemplateRenderer()

	t.Run("new_invitation", func(t *testing.T) {
		subject, html, text, err := r.Render("new_invitation", &domain.NewInvitationEmailData{
			Email:     "groupx@example.com",
			HostName:  "Host A",
			GroupName: "Group X",
			Date:      "2026-03-05",
		})
		require.NoError(t, err)
		require.Contains(t, subject, "2026-03-05")
		require.Contains(t, html, "Host A")
		require.Contains(t, html, "Group X")
		require.Contains(t, text, "2026-03-05")
	})

	t.Run("invitation_rejected escapes the reason in html", func(t *testing.T) {
		_, html, text, err := r.Render("invitation_rejected", &domain.InvitationRejectedEmailData{
			HostName:  "Host A",
			GroupName: "Group X",
			Date:      "2026-03-05",
			Reason:    "<script>alert(1)</script>",
		})
		require.NoError(t, err)
		require.NotContains(t, html, "<script>")
		require.Contains(t, text, "<script>alert(1)</script>")
	})

	t.Run("login_code", func(t *testing.T) {
		subject, html, _, err := r.Render("login_code", &domain.LoginCodeEmailData{
			Email:            "rep@example.com",
			Code:             "493817",
			ExpiresInMinutes: 15,
		})
		require.NoError(t, err)
		require.NotEmpty(t, subject)
		require.Contains(t, html, "493817")
		require.Contains(t, html, "15")
	})

	t.Run("every lifecycle template is present", func(t *testing.T) {
		for _, name := range []string{"new_invitation", "invitation_accepted", "invitation_rejected", "no_show_alert", "login_code"} {
			_, _, _, err := r.Render(name, map[string]any{})
			require.NoError(t, err, name)
		}
	})

	t.Run("unknown template fails", func(t *testing.T) {
		_, _, _, err := r.Render("missing", nil)
		require.Error(t, err)
	})
}
