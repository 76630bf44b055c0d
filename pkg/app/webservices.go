package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"rcswitch/pkg/rcswitch"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the last received code words (newest first) and the decoder counters.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		return ctx.JSON(struct {
			Session   string         `json:"session"`
			Polarity  string         `json:"polarity"`
			Stats     rcswitch.Stats `json:"stats"`
			CodeWords []CodeWord     `json:"codeWords"`
		}{
			Session:   app.session.ID.String(),
			Polarity:  app.session.Options().Polarity.String(),
			Stats:     app.session.Stats(),
			CodeWords: app.history.last(),
		})
	}
}
