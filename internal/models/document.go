package models

import (
	"errors"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ActivityType discriminates which academic activity a study-leave request
// concerns. It drives which supporting fields are mandatory.
type ActivityType string

const (
	ActivityLectures    ActivityType = "lectures"
	ActivityOralExam    ActivityType = "oral-exam"
	ActivityWrittenExam ActivityType = "written-exam"
	ActivityOfficeHours ActivityType = "office-hours"
)

// DefaultImagePath is used when the request does not carry an image path.
const DefaultImagePath = "imgs/unitn.jpg"

// DateLayout is the ISO-8601 calendar date format used on the wire.
const DateLayout = "2006-01-02"

// AllActivityTypes returns the supported activity types in declaration order.
func AllActivityTypes() []ActivityType {
	return []ActivityType{ActivityLectures, ActivityOralExam, ActivityWrittenExam, ActivityOfficeHours}
}

// Valid reports whether a is one of the supported activity types.
func (a ActivityType) Valid() bool {
	switch a {
	case ActivityLectures, ActivityOralExam, ActivityWrittenExam, ActivityOfficeHours:
		return true
	}
	return false
}

// Label returns the human-readable form: hyphens replaced by spaces, title-cased.
func (a ActivityType) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(a), "-", " "))
}

// IsLectures reports whether the activity is a lecture period.
func (a ActivityType) IsLectures() bool { return a == ActivityLectures }

// IsOralExam reports whether the activity is an oral exam.
func (a ActivityType) IsOralExam() bool { return a == ActivityOralExam }

// IsWrittenExam reports whether the activity is a written exam.
func (a ActivityType) IsWrittenExam() bool { return a == ActivityWrittenExam }

// IsOfficeHours reports whether the activity is an office-hours visit.
func (a ActivityType) IsOfficeHours() bool { return a == ActivityOfficeHours }

// ActivityTypeInfo pairs an activity type value with its display label.
type ActivityTypeInfo struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

// ActivityTypeInfos returns all activity types with display labels,
// as served by the activity-types endpoint.
func ActivityTypeInfos() []ActivityTypeInfo {
	types := AllActivityTypes()
	infos := make([]ActivityTypeInfo, 0, len(types))
	for _, a := range types {
		infos = append(infos, ActivityTypeInfo{Value: string(a), Name: a.Label()})
	}
	return infos
}

// DocumentRequest is the raw build-document payload as received on the wire.
type DocumentRequest struct {
	Language     string       `json:"language" validate:"required,bcp47_language_tag"`
	Name         string       `json:"name" validate:"required"`
	ID           string       `json:"id" validate:"required"`
	Degree       string       `json:"degree" validate:"required"`
	Course       string       `json:"course"`
	Professor    string       `json:"professor"`
	Date         string       `json:"date" validate:"omitempty,datetime=2006-01-02"`
	City         string       `json:"city" validate:"required"`
	ImagePath    string       `json:"image_path"`
	ActivityType ActivityType `json:"activity_type" validate:"required,oneof=lectures oral-exam written-exam office-hours"`
}

// FieldError describes a single field-scoped validation failure with a
// machine-readable reason code.
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is the full set of violations found in one request.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	reasons := make([]string, 0, len(e))
	for _, fe := range e {
		reasons = append(reasons, fe.Field+": "+fe.Reason)
	}
	return "validation failed: " + strings.Join(reasons, "; ")
}

// activityRequirements maps each activity type to the extra field it makes
// mandatory. Adding an activity type is a data change, not a logic change.
var activityRequirements = map[ActivityType]struct {
	fieldName string // exported struct field name
	jsonName  string
	reason    string
}{
	ActivityLectures:    {"Course", "course", "course_required_for_lectures"},
	ActivityOralExam:    {"Course", "course", "course_required_for_exam"},
	ActivityWrittenExam: {"Course", "course", "course_required_for_exam"},
	ActivityOfficeHours: {"Professor", "professor", "professor_required_for_office_hours"},
}

// crossFieldMessages translates struct-level reason codes to messages.
var crossFieldMessages = map[string]string{
	"course_required_for_lectures":        "Course must be provided when lectures is selected",
	"course_required_for_exam":            "Course must be provided when exam is selected",
	"professor_required_for_office_hours": "Professor must be provided when office hours is selected",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json tag names in errors instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(activityRequirementsStructLevel, DocumentRequest{})
	return v
}

// activityRequirementsStructLevel enforces the cross-field conditional rule.
// An unrecognized activity type is skipped here: the field-level oneof check
// already reports it, and conditional requirements are undefined for it.
func activityRequirementsStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(DocumentRequest)

	rule, ok := activityRequirements[req.ActivityType]
	if !ok {
		return
	}

	value := req.Course
	if rule.fieldName == "Professor" {
		value = req.Professor
	}

	if strings.TrimSpace(value) == "" {
		sl.ReportError(value, rule.jsonName, rule.fieldName, rule.reason, "")
	}
}

// trim strips surrounding whitespace from every string field so that the
// non-empty checks operate on trimmed values.
func (r *DocumentRequest) trim() {
	r.Language = strings.TrimSpace(r.Language)
	r.Name = strings.TrimSpace(r.Name)
	r.ID = strings.TrimSpace(r.ID)
	r.Degree = strings.TrimSpace(r.Degree)
	r.Course = strings.TrimSpace(r.Course)
	r.Professor = strings.TrimSpace(r.Professor)
	r.Date = strings.TrimSpace(r.Date)
	r.City = strings.TrimSpace(r.City)
	r.ImagePath = strings.TrimSpace(r.ImagePath)
	r.ActivityType = ActivityType(strings.TrimSpace(string(r.ActivityType)))
}

// Validate applies all field and cross-field rules, collecting every
// violation rather than stopping at the first. A nil result means the
// request is valid.
func (r *DocumentRequest) Validate() ValidationErrors {
	r.trim()

	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Field: "", Reason: "invalid", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, newFieldError(fe))
	}
	return out
}

func newFieldError(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required":
		return FieldError{Field: fe.Field(), Reason: "required", Message: fe.Field() + " is required"}
	case "bcp47_language_tag":
		value, _ := fe.Value().(string)
		return FieldError{Field: fe.Field(), Reason: "invalid_language", Message: "Invalid language code: " + value, Value: value}
	case "datetime":
		return FieldError{Field: fe.Field(), Reason: "invalid_date", Message: fe.Field() + " must be a calendar date in YYYY-MM-DD format"}
	case "oneof":
		return FieldError{Field: fe.Field(), Reason: "invalid_activity_type", Message: fe.Field() + " must be one of: " + fe.Param()}
	}

	// Struct-level violations carry their reason code as the tag
	if msg, ok := crossFieldMessages[fe.Tag()]; ok {
		return FieldError{Field: fe.Field(), Reason: fe.Tag(), Message: msg}
	}

	return FieldError{Field: fe.Field(), Reason: fe.Tag(), Message: fe.Field() + " is invalid"}
}

// Document is the canonical validated record, the only form ever passed to
// the render step. It is constructed fresh per request and discarded after
// the render call returns.
type Document struct {
	Language     string
	Name         string
	ID           string
	Degree       string
	Course       string
	Professor    string
	Date         time.Time
	City         string
	ImagePath    string
	ActivityType ActivityType
}

// Canonicalize converts a validated request into the canonical record,
// applying defaults and path normalization. Call only after Validate has
// passed; the date parse error is unreachable for validated input.
func (r *DocumentRequest) Canonicalize(now time.Time) (*Document, error) {
	date := now.AddDate(0, 0, 1)
	if r.Date != "" {
		parsed, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	return &Document{
		Language:     r.Language,
		Name:         r.Name,
		ID:           r.ID,
		Degree:       r.Degree,
		Course:       r.Course,
		Professor:    r.Professor,
		Date:         date,
		City:         r.City,
		ImagePath:    NormalizeImagePath(r.ImagePath),
		ActivityType: r.ActivityType,
	}, nil
}

// NormalizeImagePath resolves "." and ".." segments and normalizes
// separators to forward slashes. The path is never checked for filesystem
// existence. Empty input falls back to the default image path.
func NormalizeImagePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		p = DefaultImagePath
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// DocumentPayload is the flat key-value bundle handed to the external
// compiler. Every value is a string: the template layer cannot handle nulls,
// so absent fields serialize as empty strings.
type DocumentPayload struct {
	Language     string `json:"language"`
	Name         string `json:"name"`
	ID           string `json:"id"`
	Degree       string `json:"degree"`
	Course       string `json:"course"`
	Professor    string `json:"professor"`
	Date         string `json:"date"`
	City         string `json:"city"`
	ImagePath    string `json:"image_path"`
	ActivityType string `json:"activity_type"`
}

// Payload serializes the canonical record for the compiler, rendering the
// date as an ISO-8601 string.
func (d *Document) Payload() DocumentPayload {
	return DocumentPayload{
		Language:     d.Language,
		Name:         d.Name,
		ID:           d.ID,
		Degree:       d.Degree,
		Course:       d.Course,
		Professor:    d.Professor,
		Date:         d.Date.Format(DateLayout),
		City:         d.City,
		ImagePath:    d.ImagePath,
		ActivityType: string(d.ActivityType),
	}
}
