package api

import (
	"net/http"

	"github.com/St1cky1/haccp-service/internal/api/handlers"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services - все, что нужно HTTP слою
type Services struct {
	Auth       *usecase.AuthService
	Resolver   *usecase.TenantResolver
	Tasks      *usecase.TaskService
	Composer   *usecase.ComposerService
	References *usecase.ReferenceService
	Companies  *usecase.CompanyService
	Profile    *usecase.ProfileService
}

func NewRouter(s Services, log *zap.SugaredLogger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	authHandler := handlers.NewAuthHandler(s.Auth, s.Resolver, log)
	taskHandler := handlers.NewTaskHandler(s.Tasks, log)
	composerHandler := handlers.NewComposerHandler(s.Composer, log)
	catalogHandler := handlers.NewCatalogHandler(s.References, log)
	companyHandler := handlers.NewCompanyHandler(s.Companies, log)
	profileHandler := handlers.NewProfileHandler(s.Profile, log)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/files/*", profileHandler.ServeFile)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(RequireAuth(s.Auth)).Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(s.Auth))

			r.Get("/me", authHandler.Me)

			r.Route("/companies", func(r chi.Router) {
				r.Post("/", companyHandler.Setup)
				r.Get("/current", companyHandler.Current)
				r.Post("/logo", profileHandler.UploadCompanyLogo)
			})

			r.Route("/team", func(r chi.Router) {
				r.Get("/", companyHandler.ListMembers)
				r.Post("/", companyHandler.AddMember)
				r.Patch("/{id}", companyHandler.UpdateMember)
				r.Delete("/{id}", companyHandler.RemoveMember)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Delete("/", taskHandler.DeleteTask)
					r.Post("/duplicate", taskHandler.DuplicateTask)
					r.Patch("/in-use", taskHandler.SetInUse)
					r.Patch("/status", taskHandler.SetStatus)
				})
			})

			r.Route("/composer", func(r chi.Router) {
				r.Get("/", composerHandler.State)
				r.Post("/", composerHandler.StartCreate)
				r.Delete("/", composerHandler.Cancel)
				r.Post("/edit/{id}", composerHandler.StartEdit)
				r.Post("/next", composerHandler.Next)
				r.Post("/back", composerHandler.Back)
				r.Put("/type", composerHandler.SelectType)
				r.Put("/details", composerHandler.SetDetails)

				r.Get("/field-types", composerHandler.FieldTypes)
				r.Post("/fields", composerHandler.AddField)
				r.Route("/fields/{fieldID}", func(r chi.Router) {
					r.Put("/", composerHandler.UpdateField)
					r.Delete("/", composerHandler.RemoveField)
					r.Post("/move", composerHandler.MoveField)
					r.Put("/location", composerHandler.SetFieldLocation)
					r.Post("/options", composerHandler.AddFieldOption)
					r.Delete("/options/{index}", composerHandler.RemoveFieldOption)
				})

				r.Post("/checklist", composerHandler.AddChecklistItem)
				r.Route("/checklist/{index}", func(r chi.Router) {
					r.Put("/", composerHandler.UpdateChecklistItem)
					r.Delete("/", composerHandler.RemoveChecklistItem)
					r.Put("/location", composerHandler.SetChecklistItemLocation)
				})

				r.Get("/sops", composerHandler.SOPOptions)
				r.Put("/sops", composerHandler.SelectSOPs)
				r.Delete("/sops/{id}", composerHandler.DetachSOP)
				r.Route("/sops/picker", func(r chi.Router) {
					r.Post("/", composerHandler.OpenSOPPicker)
					r.Delete("/", composerHandler.CloseSOPPicker)
					r.Post("/toggle/{id}", composerHandler.ToggleSOP)
					r.Post("/done", composerHandler.ConfirmSOPs)
				})
				r.Get("/review", composerHandler.Review)
				r.Post("/save", composerHandler.Save)
			})

			r.Get("/locations/{type}", composerHandler.Locations)

			r.Route("/catalog/{collection}", func(r chi.Router) {
				r.Get("/", catalogHandler.List)
				r.Post("/", catalogHandler.Create)
				r.Put("/{id}", catalogHandler.Replace)
				r.Delete("/{id}", catalogHandler.Delete)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/name", profileHandler.UpdateDisplayName)
				r.Put("/email", profileHandler.ChangeEmail)
				r.Put("/password", profileHandler.ChangePassword)
				r.Put("/2fa", profileHandler.SetTwoFactor)
				r.Post("/avatar", profileHandler.UploadAvatar)
				r.Get("/avatar", profileHandler.DownloadAvatar)
			})
		})
	})

	return r
}
