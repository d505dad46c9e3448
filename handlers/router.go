package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"simregistry-backend/storage"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses the embedded HTML views
func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"date": formatDate,
		"optdate": func(t *time.Time) string {
			if t == nil {
				return "-"
			}
			return formatDate(*t)
		},
		"deref": deref,
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// RegisterRoutes wires the SIM, health and metrics endpoints onto r.
// r must already have the templates from LoadTemplates installed.
func RegisterRoutes(r *gin.Engine, sim *SIMHandler, health *HealthHandler, metrics http.Handler) {
	r.GET("/health", health.Health)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	r.GET("/", sim.Index)
	r.GET("/saved", sim.ListSaved)
	r.POST("/submit-sim", sim.CreateLicense)
	r.GET("/edit/:id", sim.EditLicense)
	r.POST("/update/:id", sim.UpdateLicense)
	r.POST("/delete/:id", sim.DeleteLicense)
	r.GET("/detail/:id", sim.DetailLicense)
	r.POST("/delete-foto/:id", sim.DeletePhoto)
	r.GET(storage.PhotoURLPrefix+":name", sim.ServePhoto)
}
