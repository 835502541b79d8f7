// Package resumes stores an uploaded resume on the owning student account.
package resumes

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"Backend-PMS/src/logger"
	"Backend-PMS/src/metrics"
	"Backend-PMS/src/models"
	"Backend-PMS/src/services/accounts"
	"Backend-PMS/src/utils"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
)

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
}

// AllowedExtension reports whether filename ends in .pdf or .docx, ignoring case.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

type Service struct {
	store   accounts.Store
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(store accounts.Store, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, metrics: m, logger: log}
}

// Ingest base64-encodes content and writes it with filename onto the student
// identified by email. The returned student has neither password nor resume data.
func (s *Service) Ingest(ctx context.Context, email, filename string, content []byte) (*models.Student, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, utils.ValidationError("Student email is required")
	}
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return nil, utils.ValidationError("No file uploaded")
	}
	if !AllowedExtension(filename) {
		return nil, utils.ValidationError("Only PDF and DOCX files are allowed")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	updated, err := s.store.UpdateByEmail(ctx, models.RoleStudent, email, accounts.Change{
		Set: bson.M{
			"resumeFileName": filename,
			"resumeData":     base64.StdEncoding.EncodeToString(content),
		},
	})
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, utils.NotFoundError("Student not found")
	}
	if err != nil {
		return nil, oops.
			Code(utils.CodeInternal).
			With("operation", "upload_resume").
			With("email", email).
			Wrap(err)
	}

	s.metrics.ResumeUploaded(len(content))
	s.logger.Info("Resume service: resume stored", "email", email, "file", filename, "bytes", len(content))

	student, ok := models.StripSecrets(updated).(*models.Student)
	if !ok {
		return nil, oops.Code(utils.CodeInternal).Errorf("unexpected account type %T", updated)
	}
	student.ResumeData = ""
	return student, nil
}

// Resume returns the stored file name and decoded content of a student's resume.
func (s *Service) Resume(ctx context.Context, email string) (string, []byte, error) {
	email = models.NormalizeEmail(email)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	acc, err := s.store.FindByEmail(ctx, models.RoleStudent, email, false)
	if errors.Is(err, accounts.ErrNotFound) {
		return "", nil, utils.NotFoundError("Student not found")
	}
	if err != nil {
		return "", nil, oops.Code(utils.CodeInternal).With("operation", "get_resume").Wrap(err)
	}
	student, ok := acc.(*models.Student)
	if !ok || student.ResumeFileName == "" {
		return "", nil, utils.NotFoundError("No resume uploaded")
	}
	data, err := base64.StdEncoding.DecodeString(student.ResumeData)
	if err != nil {
		return "", nil, oops.Code(utils.CodeInternal).With("operation", "get_resume").Wrap(err)
	}
	return student.ResumeFileName, data, nil
}
