package controllers

import (
	"io"
	"mime/multipart"
	"sort"

	"Backend-PMS/src/services/resumes"
	"Backend-PMS/src/utils"

	"github.com/gofiber/fiber/v2"
)

const studentEmailHeader = "X-Student-Email"

type ResumeController struct {
	resumes *resumes.Service
}

func NewResumeController(svc *resumes.Service) *ResumeController {
	return &ResumeController{resumes: svc}
}

// UploadResume godoc
// @Summary      Upload a student resume
// @Description  Stores a .pdf or .docx file on the student named by X-Student-Email.
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-Student-Email header string true "Student email"
// @Param        resume formData file true "Resume file (.pdf or .docx)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/students/upload-resume [post]
func (rc *ResumeController) UploadResume(c *fiber.Ctx) error {
	email := c.Get(studentEmailHeader)
	if email == "" {
		return utils.HandleError(c, utils.ValidationError("Student email is required"), "")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.HandleError(c, utils.ValidationError("No file uploaded"), "")
	}
	fh := firstFile(form)
	if fh == nil {
		return utils.HandleError(c, utils.ValidationError("No file uploaded"), "")
	}
	if !resumes.AllowedExtension(fh.Filename) {
		return utils.HandleError(c, utils.ValidationError("Only PDF and DOCX files are allowed"), "")
	}

	f, err := fh.Open()
	if err != nil {
		return utils.HandleError(c, err, "Upload failed")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return utils.HandleError(c, err, "Upload failed")
	}

	student, err := rc.resumes.Ingest(c.UserContext(), email, fh.Filename, content)
	if err != nil {
		return utils.HandleError(c, err, "Upload failed")
	}

	return c.JSON(fiber.Map{
		"message":        "Resume uploaded successfully",
		"resumeFileName": student.ResumeFileName,
		"student":        student,
	})
}

// DownloadResume godoc
// @Summary      Download a student resume
// @Tags         resumes
// @Produce      octet-stream
// @Param        X-Student-Email header string true "Student email"
// @Success      200
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/students/resume [get]
func (rc *ResumeController) DownloadResume(c *fiber.Ctx) error {
	email := c.Get(studentEmailHeader)
	if email == "" {
		return utils.HandleError(c, utils.ValidationError("Student email is required"), "")
	}

	name, data, err := rc.resumes.Resume(c.UserContext(), email)
	if err != nil {
		return utils.HandleError(c, err, "Download failed")
	}

	c.Attachment(name)
	return c.Send(data)
}

// firstFile picks the "resume" or "file" part when present, otherwise the
// first part by field name.
func firstFile(form *multipart.Form) *multipart.FileHeader {
	for _, key := range []string{"resume", "file"} {
		if files := form.File[key]; len(files) > 0 {
			return files[0]
		}
	}

	keys := make([]string, 0, len(form.File))
	for k := range form.File {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if files := form.File[k]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}
