package app

// initDefaultRoutes initializes the applications routes.
//  Every web service can be disabled in the configuration.
func (app *App) initDefaultRoutes() {
	api := app.web.Group("/")
	if app.config.Webserver.Webservices["version"] {
		api.Get("/version", app.HandleVersion())
	}
	if app.config.Webserver.Webservices["health"] {
		api.Get("/health", app.HandleHealth())
	}
	if app.config.Webserver.Webservices["data"] {
		api.Get("/data", app.HandleData())
	}
	if app.config.Webserver.Webservices["protocols"] {
		api.Get("/protocols", app.HandleProtocols())
	}
	if app.config.Webserver.Webservices["send"] {
		api.Post("/send", app.HandleSend())
	}
}
