package handlers

import (
	"crypto/subtle"
	"html/template"
	"net/http"

	"github.com/pixelbridge-systems/pixelbridge/internal/logging"
	"github.com/pixelbridge-systems/pixelbridge/internal/metrics"
	"github.com/pixelbridge-systems/pixelbridge/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>pixelbridge clients</title>
<style>
    table {border-collapse: collapse; width: 100%;}
    td, th {border: 1px solid #ddd; padding: 8px; text-align: left;}
    tr:nth-child(even) {background-color: #f2f2f2;}
</style>
</head>
<body>
    <h1>Clients ({{len .Clients}})</h1>
    <table>
        <tr>
            <th>Client ID</th>
            <th>Name</th>
            <th>Status</th>
            <th>UTM Source</th>
            <th>Campaign</th>
            <th>FB Pixel</th>
            <th>FB Token</th>
            <th>Last Activity</th>
        </tr>
        {{range .Clients}}
        <tr>
            <td>{{.ID}}</td>
            <td>{{orDash .Name}}</td>
            <td>{{orDash .Status}}</td>
            <td>{{orDash .UTMSource}}</td>
            <td>{{orDash .UTMCampaign}}</td>
            <td>{{truncate .FBPixelID}}</td>
            <td>{{truncate .FBAccessToken}}</td>
            <td>{{.LastActivity.Format "2006-01-02 15:04:05"}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>`

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
	// Credentials never render in full.
	"truncate": func(s string) string {
		if s == "" {
			return "-"
		}
		if len(s) > 6 {
			return s[:6] + "..."
		}
		return s
	},
}).Parse(dashboardHTML))

// AdminHandler serves the read-only client dashboard behind HTTP
// basic auth. The password may be configured as a bcrypt hash; plain
// text is compared in constant time.
type AdminHandler struct {
	repo         repository.Repository
	username     string
	password     string
	passwordHash string
	logger       *logging.Logger
}

func NewAdminHandler(repo repository.Repository, username, password, passwordHash string, logger *logging.Logger) *AdminHandler {
	return &AdminHandler{
		repo:         repo,
		username:     username,
		password:     password,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="pixelbridge"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	clients, err := h.repo.List(r.Context())
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("list").Inc()
		h.logger.ErrorContext(r.Context(), "failed to list clients", "error", err)
		http.Error(w, "Error fetching clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, map[string]any{"Clients": clients}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard", "error", err)
	}
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	// Unconfigured credentials close the dashboard entirely rather
	// than opening it.
	if h.username == "" {
		return false
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}

	if subtle.ConstantTimeCompare([]byte(user), []byte(h.username)) != 1 {
		return false
	}

	if h.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(h.password)) == 1
}
