package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.health)
	s.router.Get("/ready", s.ready)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		// Writes
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.rateLimit)
			r.Post("/results", s.recordResult)
			r.Post("/duels", s.completeDuel)
			r.Post("/guests/{guestId}/migrate", s.migrateGuest)
		})

		r.Get("/rankings/{gameType}", s.getRankings)
		r.Get("/rankings/{gameType}/players/{playerId}", s.getUserRank)

		r.Get("/games/{gameType}/top", s.getTopGames)
		r.Get("/games/{gameType}/players/{playerId}/stats", s.getUserGameStats)

		r.Get("/duels/overall", s.getOverallLeaderboard)
		r.Get("/duels/{gameType}", s.getDuelLeaderboard)
		r.Get("/duels/{gameType}/players/{playerId}", s.getDuelStat)
	})
}
