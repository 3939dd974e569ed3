package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patchline/verdict/internal/decision"
)

func NewRouter(svc *decision.Service, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(240))

	board := NewBoardHandler(svc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/board", board.Get)
		r.Get("/board/report", board.Report)
		r.Get("/board/status", board.Status)
		r.Get("/board/weights", board.WeightLabels)

		r.Put("/board/title", board.SetTitle)

		r.Post("/board/options", board.AddOption)
		r.Put("/board/options/{id}/name", board.RenameOption)
		r.Put("/board/options/{id}/note", board.SetOptionNote)
		r.Delete("/board/options/{id}", board.DeleteOption)

		r.Post("/board/criteria", board.AddCriterion)
		r.Put("/board/criteria/{id}/name", board.RenameCriterion)
		r.Put("/board/criteria/{id}/weight", board.SetCriterionWeight)
		r.Delete("/board/criteria/{id}", board.DeleteCriterion)

		r.Put("/board/ratings/{optionID}/{criterionID}", board.SetRating)
		r.Delete("/board/ratings/{optionID}/{criterionID}", board.ClearRating)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Post("/board/reset", board.Reset)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
