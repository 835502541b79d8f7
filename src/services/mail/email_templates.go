package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"Backend-PMS/src/models"
)

// ResetEmailData fields available to reset_password.html
type ResetEmailData struct {
	Name             string
	RoleLabel        string
	ResetURL         string
	ExpiresInMinutes int
}

//go:embed reset_password.html
var resetEmailHTML string

var resetEmailTmpl = template.Must(template.New("reset").Parse(resetEmailHTML))

var roleLabels = map[models.Role]string{
	models.RoleStudent:          "student",
	models.RoleFaculty:          "faculty",
	models.RolePlacementOfficer: "placement officer",
	models.RoleAdmin:            "admin",
}

func roleLabel(p ResetMailPayload) string {
	if label := roleLabels[p.Role]; label != "" {
		return label
	}
	return string(p.Role)
}

// RenderResetEmailHTML renders the reset mail body.
func RenderResetEmailHTML(p ResetMailPayload) (string, error) {
	label := roleLabel(p)

	var buf bytes.Buffer
	err := resetEmailTmpl.Execute(&buf, ResetEmailData{
		Name:             p.Name,
		RoleLabel:        label,
		ResetURL:         p.ResetURL,
		ExpiresInMinutes: p.ExpiresInMinutes,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderResetEmailText is the plain-text part for clients without HTML.
func RenderResetEmailText(p ResetMailPayload) string {
	return fmt.Sprintf("Hello %s,\n\nA password reset was requested for your %s account.\n"+
		"Open this link to choose a new password:\n%s\n\nThe link expires in %d minutes. "+
		"If you did not ask for this, ignore this mail.\n",
		p.Name, roleLabel(p), p.ResetURL, p.ExpiresInMinutes)
}

func resetEnvelope(p ResetMailPayload) (Envelope, error) {
	html, err := RenderResetEmailHTML(p)
	if err != nil {
		return Envelope{}, fmt.Errorf("render reset mail: %w", err)
	}
	return Envelope{
		To:      p.To,
		Subject: resetMailSubject,
		HTML:    html,
		Text:    RenderResetEmailText(p),
	}, nil
}
