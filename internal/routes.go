package internal

import (
	"creatorstats/internal/controllers"
	"creatorstats/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/snapshot", http.HandlerFunc(apiController.GetSnapshot))
	routers.Get("/analytics", http.HandlerFunc(apiController.GetAnalytics))
	routers.Get("/status", http.HandlerFunc(apiController.GetStatus))
	routers.Get("/items", http.HandlerFunc(apiController.GetItems))
	routers.Post("/collect", http.HandlerFunc(apiController.Collect))
	routers.Get("/collect/should", http.HandlerFunc(apiController.ShouldCollect))
	routers.Get("/history", http.HandlerFunc(apiController.GetHistory))
	routers.Get("/history/period", http.HandlerFunc(apiController.GetHistoryPeriod))
	routers.Get("/history/monthly", http.HandlerFunc(apiController.GetHistoryMonthly))
	routers.Post("/history/clear", http.HandlerFunc(apiController.ClearHistory))
	routers.Get("/config", http.HandlerFunc(apiController.GetConfig))
	routers.Post("/config", http.HandlerFunc(apiController.UpdateConfig))
	routers.Get("/oauth/url", http.HandlerFunc(apiController.GetOAuthURL))
	routers.Post("/oauth/callback", http.HandlerFunc(apiController.CompleteOAuth))
	routers.Post("/disconnect", http.HandlerFunc(apiController.Disconnect))
	routers.Post("/demo/cache", http.HandlerFunc(apiController.CacheDemoData))
	routers.Get("/overview", http.HandlerFunc(apiController.GetOverview))
	return routers
}
