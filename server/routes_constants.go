package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex     = "/"
	RouteDashboard = "/dashboard"

	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthRefresh  = "/auth/refresh"

	// Paths used by the first version of the app; existing OAuth client
	// registrations still point at them.
	RouteLegacyLogin    = "/auth/google"
	RouteLegacyCallback = "/auth/google/callback"
	RouteLegacyLogout   = "/logout"

	// API Routes
	RouteAPIDriveFiles          = "/api/drive/files"
	RouteAPIDriveCreateFolder   = "/api/drive/create-folder"
	RouteAPIGmailMessages       = "/api/gmail/messages"
	RouteAPIGmailLabels         = "/api/gmail/labels"
	RouteAPICalendarEvents      = "/api/calendar/events"
	RouteAPICalendarCreateEvent = "/api/calendar/create-event"
	RouteAPISheetsTest          = "/api/sheets/test"
	RouteAPIYouTubeSubs         = "/api/youtube/subscriptions"
	RouteAPIMapsGeocode         = "/api/maps/geocode"
)
