package listing

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "roost/pkg/domain-errors"
)

// ValidateForm applies the listing schema to a submitted form. Every violated
// rule is collected and the messages joined into one human-readable string,
// so the client sees all problems at once. Must run before any side effect:
// invalid input never reaches storage or billed providers.
func ValidateForm(form Form) error {
	var violations []string

	if strings.TrimSpace(form.Title) == "" {
		violations = append(violations, "title is required")
	} else if !govalidator.StringLength(form.Title, "1", "140") {
		violations = append(violations, "title must be at most 140 characters")
	}

	if strings.TrimSpace(form.Description) == "" {
		violations = append(violations, "description is required")
	}

	if strings.TrimSpace(form.PriceRaw) == "" {
		violations = append(violations, "price is required")
	} else if !govalidator.IsFloat(form.PriceRaw) && !govalidator.IsInt(form.PriceRaw) {
		violations = append(violations, "price must be a number")
	} else if form.Price < 0 {
		violations = append(violations, "price must not be negative")
	}

	if strings.TrimSpace(form.Location) == "" {
		violations = append(violations, "location is required")
	}

	if strings.TrimSpace(form.Country) == "" {
		violations = append(violations, "country is required")
	}

	if len(violations) > 0 {
		return dErrors.New(dErrors.CodeInvalidInput, strings.Join(violations, ", "))
	}
	return nil
}
