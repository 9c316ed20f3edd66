package internal

import (
	"net/http"
	"pointsd/internal/controllers"
	"pointsd/internal/providers"
	"pointsd/internal/structures"
)

func InitRoutes(pointsController *controllers.PointsController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/points", http.HandlerFunc(pointsController.Check))
	routers.Get("/leaderboard", http.HandlerFunc(pointsController.Leaderboard))
	routers.Post("/presence", http.HandlerFunc(pointsController.Presence))
	routers.Post("/reset", http.HandlerFunc(pointsController.Reset))
	routers.Post("/reset-all", http.HandlerFunc(pointsController.ResetAll))
	return routers
}
