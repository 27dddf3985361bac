// Package validation holds the custom validator tags shared by request
// models.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ResumeIDPattern validates resume IDs: rsm_ followed by 10-50 chars of
// alphanumerics, hyphens and underscores
var ResumeIDPattern = regexp.MustCompile(`^rsm_[a-zA-Z0-9_-]{10,50}$`)

// ValidateResumeID validates that the resume ID follows the expected format
func ValidateResumeID(fl validator.FieldLevel) bool {
	return ResumeIDPattern.MatchString(fl.Field().String())
}

// RegisterResumeValidators registers all resume-related custom validators
func RegisterResumeValidators(v *validator.Validate) {
	v.RegisterValidation("resume_id", ValidateResumeID)
}
