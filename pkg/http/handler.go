package http

import "github.com/labstack/echo/v4"

// Handler registers routes on the server.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
