package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLegacyLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLegacyCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLegacyLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	// Google API routes
	s.RegisterRouteHandler("GET "+RouteAPIDriveFiles, ChainMiddleware(serveResource(s, s.api.ListDriveFiles), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIDriveCreateFolder, ChainMiddleware(serveResource(s, s.api.CreateFolder), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIGmailMessages, ChainMiddleware(serveResource(s, s.api.ListGmailMessages), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIGmailLabels, ChainMiddleware(serveResource(s, s.api.ListGmailLabels), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPICalendarEvents, ChainMiddleware(serveResource(s, s.api.ListUpcomingEvents), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPICalendarCreateEvent, ChainMiddleware(serveResource(s, s.api.CreateTestEvent), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPISheetsTest, ChainMiddleware(serveResource(s, s.api.CreateTestSpreadsheet), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIYouTubeSubs, ChainMiddleware(serveResource(s, s.api.ListSubscriptions), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIMapsGeocode, ChainMiddleware(s.GeocodeInfoHandler(), s.APIMiddleware()...))

	// Preflight for the API surface
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.noContent(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAuthRefresh, ChainMiddleware(s.noContent(), s.APIMiddleware()...))
}
