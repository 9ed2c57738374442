package scan

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/accessly-backend/internal/platform/apierr"
)

var urlPattern = regexp.MustCompile(`^https?://.+$`)

func ValidURL(raw string) bool {
	return urlPattern.MatchString(raw)
}

// ValidateURL is run before any browser session is started.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apierr.Validation("a valid URL is required")
	}
	if !ValidURL(raw) {
		return apierr.Validation("%s is not a valid URL", raw)
	}
	return nil
}

// Validate checks a built document against the stored schema.
func (sr *ScanResult) Validate() error {
	if sr == nil {
		return apierr.Validation("scan result is empty")
	}
	if err := ValidateURL(sr.URL); err != nil {
		return err
	}
	violations := sr.ViolationList()
	if sr.TotalViolations != len(violations) {
		return apierr.Validation("totalViolations %d does not match %d violations", sr.TotalViolations, len(violations))
	}
	if sr.IssuesByImpact.Total() > sr.TotalViolations {
		return apierr.Validation("issuesByImpact exceeds totalViolations")
	}
	return ValidateViolations(violations)
}

func ValidateViolations(violations []Violation) error {
	for i, v := range violations {
		if err := v.validate(); err != nil {
			return apierr.Validation("violations[%d]: %v", i, err)
		}
	}
	return nil
}

func (v Violation) validate() error {
	switch {
	case strings.TrimSpace(v.ID) == "":
		return errors.New("id is required")
	case !v.Impact.Valid():
		return fmt.Errorf("impact %q is not one of minor, moderate, serious, critical", v.Impact)
	case strings.TrimSpace(v.Description) == "":
		return errors.New("description is required")
	case strings.TrimSpace(v.Help) == "":
		return errors.New("help is required")
	case strings.TrimSpace(v.HelpURL) == "":
		return errors.New("helpUrl is required")
	case !ValidURL(v.HelpURL):
		return fmt.Errorf("%s is not a valid URL", v.HelpURL)
	}
	for j, n := range v.Nodes {
		switch {
		case n.HTML == "":
			return fmt.Errorf("nodes[%d].html is required", j)
		case n.Target == nil:
			return fmt.Errorf("nodes[%d].target is required", j)
		case n.FailureSummary == "":
			return fmt.Errorf("nodes[%d].failureSummary is required", j)
		}
	}
	return nil
}
