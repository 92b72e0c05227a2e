package api

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/odsplit/odsplit/pkg/compiler"
	"github.com/odsplit/odsplit/pkg/overrides"
	"github.com/odsplit/odsplit/pkg/report"
)

func (server *Server) apiVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": server.Version,
	})
}

// validateOverrides checks an uploaded override document against the loaded
// feed without compiling anything.
func (server *Server) validateOverrides(c *fiber.Ctx) error {
	document, err := overrides.ParseDocument(bytes.NewReader(c.Body()))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	runReport := report.NewReport()
	overrides.ValidateAgainstFeed(document.RuleSet(), server.Schedule.StopTimes, runReport)

	return c.JSON(runReport)
}

// compileOverrides runs a full compile with an uploaded override document
// and returns the run report plus output table sizes. The output feed itself
// is not materialised here - batch runs own that.
func (server *Server) compileOverrides(c *fiber.Ctx) error {
	document, err := overrides.ParseDocument(bytes.NewReader(c.Body()))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rules := document.RuleSet()
	runReport := report.NewReport()

	overrides.ValidateAgainstFeed(rules, server.Schedule.StopTimes, runReport)
	compiled := compiler.Compile(server.Schedule.Trips, server.Schedule.StopTimes, rules, runReport)

	return c.JSON(fiber.Map{
		"report":            runReport,
		"output_trips":      len(compiled.Trips),
		"output_stop_times": len(compiled.StopTimes),
	})
}
