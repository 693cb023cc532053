package internal

import (
	"net/http"
	"reployer/internal/controllers"
	"reployer/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, streamController *controllers.StreamController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/status", http.HandlerFunc(apiController.GetStatus))
	routers.Get("/history", http.HandlerFunc(apiController.GetHistory))
	routers.Get("/schedule", http.HandlerFunc(apiController.GetSchedule))
	routers.Post("/refresh", http.HandlerFunc(apiController.Refresh))
	routers.Get("/ws", http.HandlerFunc(streamController.Stream))
	return routers
}
