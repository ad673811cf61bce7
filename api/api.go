package api

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xraph/wayfarer/engine"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Pinger reports backend connectivity for the health endpoint. The store
// backends implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// API wires the HTML views and the JSON admin handlers together.
type API struct {
	eng    *engine.Engine
	pinger Pinger
	logger *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithPinger sets the store whose connectivity the health endpoint reports.
// Without one the health response carries no store field.
func WithPinger(p Pinger) Option {
	return func(a *API) {
		a.pinger = p
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New creates an API from an engine.
func New(eng *engine.Engine, opts ...Option) *API {
	a := &API{
		eng:    eng,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	registerValidations()

	return a
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	return a.Router()
}

// Router builds a gin router with embedded templates, request logging,
// recovery, and all routes registered.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(a.logger), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	a.registerRoutes(r)

	return r
}

func (a *API) registerRoutes(r *gin.Engine) {
	r.GET("/", a.home)
	r.GET("/generate", a.redirectHome)
	r.POST("/generate", a.generate)
	r.GET("/itineraries/:jobID", a.showItinerary)
	r.GET("/health", a.health)

	v1 := r.Group("/api/v1")
	v1.GET("/jobs/:jobID", a.getJob)
	v1.GET("/stats", a.stats)
}

func (a *API) health(c *gin.Context) {
	resp := gin.H{"status": "healthy"}
	if a.pinger != nil {
		if err := a.pinger.Ping(c.Request.Context()); err != nil {
			resp["store"] = "unreachable"
		} else {
			resp["store"] = "ok"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// registerValidations adds the notblank rule to gin's shared validator.
// Re-registration on subsequent New calls overwrites with the same rule.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", notBlank) //nolint:errcheck // tag name is non-empty
	}
}

// notBlank rejects strings that are empty or whitespace only.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
