package app

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"irdad/pkg/irda"
	"irdad/pkg/protocol"
	"irdad/pkg/transmitter"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the recent signals, the oldest first.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		return ctx.JSON(app.history.get())
	}
}

// HandleProtocols returns the names of the protocols which can be sent.
func (app *App) HandleProtocols() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request protocols")

		return ctx.JSON(protocol.Names())
	}
}

// HandleSend sends the message or raw timings of the request body.
// input example:
//  {"protocol":"NEC","address":4,"command":8,"repeats":2}
//  {"timings":[9000,4500,560,560,560],"repeats":0}
func (app *App) HandleSend() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request send")

		var req sendRequest
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		if err := app.send(ctx.Context(), req); err != nil {
			debug.ErrorLog.Printf("can't send %+v: %v", req, err)
			return fiber.NewError(sendStatus(err), err.Error())
		}

		return ctx.SendStatus(http.StatusNoContent)
	}
}

func sendStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoTransmitter):
		return http.StatusServiceUnavailable
	case errors.Is(err, protocol.ErrUnknownProtocol),
		errors.Is(err, irda.ErrInvalidMessage),
		errors.Is(err, transmitter.ErrInvalidParam):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
