package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/odsplit/odsplit/pkg/gtfs"
)

// Server exposes override authoring endpoints over one read-only feed
// snapshot. The snapshot is shared between requests and never mutated; each
// request gets its own report instance.
type Server struct {
	Schedule *gtfs.Schedule
	Version  string
}

func (server *Server) SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/odsplit")

	group.Get("version", server.apiVersion)

	group.Post("overrides/validate", server.validateOverrides)
	group.Post("compile", server.compileOverrides)

	return webApp.Listen(listen)
}
