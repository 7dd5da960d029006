package search

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Remote preference values accepted from callers. The value, together with
// the location, selects the location rule applied during filtering.
const (
	RemoteNoPreference = "No preference"
	RemoteOnly         = "Remote only"
	OnSiteOnly         = "On-site only"
)

// Canonical experience bands. BandAny disables band filtering.
const (
	BandEntry  = "entry"
	BandMid    = "mid"
	BandSenior = "senior"
	BandAny    = "any"
)

// Preferences describes what the candidate is looking for. It is the single
// input threaded through query construction, filtering and ranking, so the
// json tags double as the serialization sent to the scoring provider.
type Preferences struct {
	Keywords              string   `json:"job_title_keywords" mapstructure:"keywords" validate:"required"`
	Industry              []string `json:"industry,omitempty" mapstructure:"industry"`
	Location              string   `json:"location" mapstructure:"location" validate:"required"`
	EmploymentTypes       []string `json:"employment_type,omitempty" mapstructure:"employment-types"`
	ExperienceBand        string   `json:"experience_level,omitempty" mapstructure:"experience-band" validate:"omitempty,oneof=entry mid senior any"`
	SalaryMin             int      `json:"salary_min,omitempty" mapstructure:"salary-min" validate:"omitempty,gte=0"`
	SalaryMax             int      `json:"salary_max,omitempty" mapstructure:"salary-max" validate:"omitempty,gtefield=SalaryMin"`
	RemotePreference      string   `json:"remote_preference" mapstructure:"remote-preference" validate:"omitempty,oneof='No preference' 'Remote only' 'On-site only'"`
	CompanyPreferences    string   `json:"company_preferences,omitempty" mapstructure:"company-preferences"`
	AdditionalPreferences string   `json:"additional_preferences,omitempty" mapstructure:"additional-preferences"`
	DatePosted            string   `json:"date_posted,omitempty" mapstructure:"date-posted"`
}

var validate = validator.New()

// Normalize fills defaults and maps legacy experience tokens ("entry_level",
// "Mid-Level") to the canonical band set.
func (p *Preferences) Normalize() {
	p.Keywords = strings.TrimSpace(p.Keywords)
	p.Location = strings.TrimSpace(p.Location)
	p.ExperienceBand = NormalizeBand(p.ExperienceBand)
	if strings.TrimSpace(p.RemotePreference) == "" {
		p.RemotePreference = RemoteNoPreference
	}
}

// Validate normalizes the preferences and reports the first problem found.
// This is the only error class allowed to reject a pipeline run.
func (p *Preferences) Validate() error {
	if p == nil {
		return fmt.Errorf("preferences are required")
	}

	p.Normalize()

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		errs = fieldErrs
	} else {
		return fmt.Errorf("validate preferences: %w", err)
	}

	first := errs[0]
	switch {
	case first.Field() == "Keywords":
		return fmt.Errorf("job title keywords are required")
	case first.Field() == "Location":
		return fmt.Errorf("location is required")
	case first.Field() == "SalaryMax" && first.Tag() == "gtefield":
		return fmt.Errorf("salary floor (%d) is greater than ceiling (%d)", p.SalaryMin, p.SalaryMax)
	case first.Tag() == "oneof":
		return fmt.Errorf("%s has unsupported value %q", strings.ToLower(first.Field()), first.Value())
	default:
		return fmt.Errorf("invalid preference %s: failed %s", first.Field(), first.Tag())
	}
}

// NormalizeBand maps free-form experience tokens to the canonical band set.
// Unknown tokens are returned lowercased so validation can name them.
func NormalizeBand(band string) string {
	token := strings.ToLower(strings.TrimSpace(band))
	token = strings.ReplaceAll(token, "-", "_")
	token = strings.ReplaceAll(token, " ", "_")

	switch token {
	case "", BandAny, "no_preference":
		return BandAny
	case BandEntry, "entry_level", "junior":
		return BandEntry
	case BandMid, "mid_level", "middle", "intermediate":
		return BandMid
	case BandSenior, "senior_level":
		return BandSenior
	default:
		return token
	}
}
