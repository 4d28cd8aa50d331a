package rest

import (
	"github.com/gofiber/fiber/v2"
)

type ServerInterface interface {
	SubmitOnboarding(c *fiber.Ctx) error
	ListSubmissions(c *fiber.Ctx) error
	GetSubmission(c *fiber.Ctx, id string) error
	UploadDocument(c *fiber.Ctx, id string) error
	HandleSequence(c *fiber.Ctx) error
}

func RegisterHandlers(app *fiber.App, si ServerInterface) {
	app.Post("/onboardings", si.SubmitOnboarding)
	app.Get("/onboardings", si.ListSubmissions)
	app.Get("/onboardings/:id", func(c *fiber.Ctx) error {
		return si.GetSubmission(c, c.Params("id"))
	})
	app.Post("/onboardings/:id/documents", func(c *fiber.Ctx) error {
		return si.UploadDocument(c, c.Params("id"))
	})
	app.Post("/internal/sequence", si.HandleSequence)
}
