// Package validate implements the client-side checks that run before a form is
// submitted: required fields and upload size.
package validate

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/community-site/internal/apierr"
	"github.com/pfrederiksen/community-site/internal/form"
)

// MaxUploadSize is the largest accepted photo: 10 MiB.
const MaxUploadSize int64 = 10 * 1024 * 1024

// RequiredMessage is shown when any required field is blank.
const RequiredMessage = "Please fill in all required fields."

// Required fails when any of names has no non-blank value in data.
func Required(data form.Data, names ...string) error {
	var missing []string
	for _, name := range names {
		if strings.TrimSpace(data.Get(name)) == "" && data.File(name) == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// MissingFieldsError lists the required fields that were blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return RequiredMessage + " (missing: " + strings.Join(e.Fields, ", ") + ")"
}

func (e *MissingFieldsError) Unwrap() error {
	return apierr.ErrValidation
}

// FileSize fails when f is larger than max. A nil file passes.
func FileSize(f *form.File, max int64) error {
	if f == nil || f.Size() <= max {
		return nil
	}
	return apierr.NewValidationError(fmt.Sprintf("%s is %s, larger than the %s limit",
		f.Name, FormatMB(f.Size()), FormatMB(max)))
}

// FormatMB renders a byte count as megabytes with two decimals ("10.00MB").
func FormatMB(size int64) string {
	return fmt.Sprintf("%.2fMB", float64(size)/1024/1024)
}
