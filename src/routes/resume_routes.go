package routes

import (
	"Backend-PMS/src/controllers"

	"github.com/gofiber/fiber/v2"
)

func resumeRoutes(api fiber.Router, rc *controllers.ResumeController) {
	students := api.Group("/students")

	students.Post("/upload-resume", rc.UploadResume)
	students.Get("/resume", rc.DownloadResume)
}
