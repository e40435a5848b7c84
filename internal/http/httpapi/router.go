package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"jengabiashara/internal/http/handlers"
	"jengabiashara/internal/middleware"
)

// Options carries router wiring that is not part of the App container.
type Options struct {
	AllowedOrigins []string
	CountryLookup  middleware.CountryLookup
	RateLimit      int
	DefaultLocale  string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Log),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/pricing", app.Pricing)

	r.Route("/v1/workspaces", func(r chi.Router) {
		r.Post("/", app.CreateWorkspace)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetWorkspace)
			r.Delete("/", app.DeleteWorkspace)
			r.Get("/export", app.Export)

			r.Route("/studio", func(r chi.Router) {
				r.Post("/assets", app.StudioUploadAsset)
				r.Post("/model-asset", app.StudioUploadModelAsset)
				r.Post("/consent", app.StudioConsent)
				r.Patch("/selections", app.StudioSelect)
				r.Put("/prompt", app.StudioPrompt)
				r.Post("/generate", app.StudioGenerate)
				r.Post("/undo", app.StudioUndo)
				r.Post("/redo", app.StudioRedo)
				r.Get("/download", app.StudioDownload)
			})

			r.Route("/ad", func(r chi.Router) {
				r.Get("/", app.AdGet)
				r.Put("/description", app.AdDescription)
				r.Patch("/selections", app.AdSelect)
				r.Put("/prompt", app.AdPrompt)
				r.Post("/generate", app.AdGenerate)
				r.Post("/undo", app.AdUndo)
				r.Post("/redo", app.AdRedo)
				r.Get("/download", app.AdDownload)
			})

			r.Route("/video", func(r chi.Router) {
				r.Get("/", app.VideoGet)
				r.Post("/credential", app.VideoCredential)
				r.Put("/prompt", app.VideoPrompt)
				r.Post("/seed-asset", app.VideoSeedAsset)
				r.Post("/generate", app.VideoGenerate)
				r.Get("/download", app.VideoDownload)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/messages", app.ChatMessages)
				r.Post("/messages", app.ChatSend)
			})
		})
	})

	return r
}
