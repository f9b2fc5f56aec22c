package registration

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Input is the decode target for a raw registration payload.
// Pointers separate "absent" from zero values so required booleans and
// numbers can be detected.
type Input struct {
	FullName         string `json:"fullName" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required"`
	Department       string `json:"department" validate:"required"`
	Gender           string `json:"gender" validate:"required,oneof=male female"`
	ParentTshirtSize string `json:"parentTshirtSize" validate:"required,oneof=XS S M L XL XXL"`

	BringingKids   *bool        `json:"bringingKids" validate:"required"`
	NumberOfKids   *int         `json:"numberOfKids" validate:"omitempty,min=0"`
	Kids           []KidInput   `json:"kids" validate:"omitempty,dive"`
	BringingSpouse *bool        `json:"bringingSpouse"`
	Spouse         *SpouseInput `json:"spouse"`

	EntertainmentSports   []string `json:"entertainmentSports"`
	InterestedInCompeting *bool    `json:"interestedInCompeting" validate:"required"`
	CompetitiveSports     []string `json:"competitiveSports"`

	LastExercise        string   `json:"lastExercise"`
	MedicalConditions   []string `json:"medicalConditions" validate:"required,min=1"`
	CurrentMedications  string   `json:"currentMedications"`
	PreviousInjuries    string   `json:"previousInjuries"`
	PhysicalLimitations string   `json:"physicalLimitations"`
	HealthConcerns      string   `json:"healthConcerns"`

	HasMedicalConditions       *bool `json:"hasMedicalConditions"`
	HasHeartCondition          *bool `json:"hasHeartCondition"`
	HasChestPain               *bool `json:"hasChestPain"`
	HasBalanceIssues           *bool `json:"hasBalanceIssues"`
	HasOtherHealthInfo         *bool `json:"hasOtherHealthInfo"`
	IsTakingMedications        *bool `json:"isTakingMedications"`
	HasImmediateHealthConcerns *bool `json:"hasImmediateHealthConcerns"`

	GuardianName             string `json:"guardianName"`
	GuardianSignature        string `json:"guardianSignature"`
	EmergencyContactName     string `json:"emergencyContactName"`
	EmergencyContactPhone    string `json:"emergencyContactPhone"`
	EmergencyContactRelation string `json:"emergencyContactRelation"`
	DoctorClearance          *bool  `json:"doctorClearance" validate:"required"`
}

// KidInput is one entry of the kids list before validation.
type KidInput struct {
	Name       string `json:"name" validate:"required"`
	Age        *int   `json:"age" validate:"required,min=0,max=18"`
	Gender     string `json:"gender" validate:"required,oneof=male female"`
	TshirtSize string `json:"tshirtSize" validate:"required,oneof=XS S M L XL XXL"`
}

// SpouseInput is the spouse sub-object before validation.
type SpouseInput struct {
	Name       string `json:"name" validate:"required"`
	Age        *int   `json:"age" validate:"required,min=0"`
	Gender     string `json:"gender" validate:"required,oneof=male female"`
	TshirtSize string `json:"tshirtSize" validate:"required,oneof=XS S M L XL XXL"`
}

// FieldIssue is one rejected field. Path is dotted, with list indexes as
// segments (kids.1.age).
type FieldIssue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a payload.
type ValidationError struct {
	Issues []FieldIssue
}

// Error joins the issues into one readable line.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, is.Path+": "+is.Message)
	}
	return strings.Join(parts, ", ")
}

// Messages for fields where the registration form shows its own wording.
// Keyed by "<json field>|<rule>".
var fieldMessages = map[string]string{
	"fullName|required":          "Full name is required",
	"email|required":             "Valid email is required",
	"email|email":                "Valid email is required",
	"phone|required":             "Phone number is required",
	"department|required":        "Department is required",
	"name|required":              "Name is required",
	"age|required":               "Age is required",
	"age|min":                    "Age is required",
	"age|max":                    "Age is required",
	"medicalConditions|required": "Please select at least one medical condition.",
	"medicalConditions|min":      "Please select at least one medical condition.",
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Parse decodes and validates a raw registration payload.
// PRE: payload is the request body as received
// POST: Returns a Submission and nil, or a zero Submission and a *ValidationError
// INVARIANT: All violations are collected; the first failure never hides the rest
func Parse(payload []byte) (Submission, error) {
	if !json.Valid(payload) {
		return Submission{}, &ValidationError{Issues: []FieldIssue{{
			Code:    "invalid_json",
			Message: "Malformed JSON body",
		}}}
	}

	var in Input
	issues := decodeObject(payload, reflect.ValueOf(&in).Elem(), "")
	for _, is := range issues {
		if is.Path == "" {
			return Submission{}, &ValidationError{Issues: []FieldIssue{is}}
		}
	}
	issues = append(issues, validateInput(in, issues)...)
	if len(issues) > 0 {
		return Submission{}, &ValidationError{Issues: issues}
	}
	return in.submission(), nil
}

// decodeValue fills v from raw one field at a time, so a type mismatch in one
// field is reported at its own path and leaves that field at its zero value.
// PRE: raw is syntactically valid JSON; v is settable
func decodeValue(raw json.RawMessage, v reflect.Value, path string) []FieldIssue {
	if strings.TrimSpace(string(raw)) == "null" {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	switch {
	case v.Kind() == reflect.Struct:
		return decodeObject(raw, v, path)
	case v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Struct:
		elem := reflect.New(v.Type().Elem())
		issues := decodeObject(raw, elem.Elem(), path)
		v.Set(elem)
		return issues
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Struct:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			v.Set(reflect.Zero(v.Type()))
			return []FieldIssue{typeIssue(path, v.Type(), err)}
		}
		list := reflect.MakeSlice(v.Type(), len(items), len(items))
		var issues []FieldIssue
		for i, item := range items {
			issues = append(issues, decodeValue(item, list.Index(i), joinPath(path, strconv.Itoa(i)))...)
		}
		v.Set(list)
		return issues
	}

	target := reflect.New(v.Type())
	if err := json.Unmarshal(raw, target.Interface()); err != nil {
		v.Set(reflect.Zero(v.Type()))
		return []FieldIssue{typeIssue(path, v.Type(), err)}
	}
	v.Set(target.Elem())
	return nil
}

// decodeObject decodes each known key of a JSON object into the matching
// field of v. Unknown keys are ignored. Key matching falls back to
// case-insensitive, as encoding/json does.
func decodeObject(raw json.RawMessage, v reflect.Value, path string) []FieldIssue {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return []FieldIssue{typeIssue(path, v.Type(), err)}
	}
	if fields == nil {
		return []FieldIssue{{Path: path, Code: "invalid_type", Message: "Expected object, received null"}}
	}

	var issues []FieldIssue
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		fieldRaw, ok := lookupKey(fields, name)
		if !ok {
			continue
		}
		issues = append(issues, decodeValue(fieldRaw, v.Field(i), joinPath(path, name))...)
	}
	return issues
}

func lookupKey(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := fields[name]; ok {
		return raw, true
	}
	for k, raw := range fields {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

func typeIssue(path string, want reflect.Type, err error) FieldIssue {
	received := "invalid value"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		received = jsonValueName(typeErr.Value)
	}
	return FieldIssue{
		Path:    path,
		Code:    "invalid_type",
		Message: fmt.Sprintf("Expected %s, received %s", jsonTypeName(want), received),
	}
}

// jsonTypeName names the JSON shape a Go type decodes from.
func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "object"
}

// jsonValueName turns UnmarshalTypeError.Value ("bool", "number 7.5") into
// the registrant-facing name of what was sent.
func jsonValueName(value string) string {
	switch {
	case value == "bool":
		return "boolean"
	case strings.HasPrefix(value, "number"):
		return "number"
	}
	return value
}

func validateInput(in Input, seen []FieldIssue) []FieldIssue {
	err := structValidator().Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []FieldIssue{{Code: "invalid", Message: err.Error()}}
	}

	reported := make(map[string]bool, len(seen))
	for _, is := range seen {
		reported[is.Path] = true
	}

	var issues []FieldIssue
	for _, fe := range fieldErrs {
		path := issuePath(fe.Namespace())
		if coveredBy(reported, path) {
			continue
		}
		issues = append(issues, FieldIssue{
			Path:    path,
			Code:    fe.Tag(),
			Message: issueMessage(fe),
		})
	}
	return issues
}

// coveredBy reports whether path or one of its parents already has an issue.
// A kid that was not an object should not also report each missing field.
func coveredBy(reported map[string]bool, path string) bool {
	for {
		if reported[path] {
			return true
		}
		i := strings.LastIndexByte(path, '.')
		if i < 0 {
			return false
		}
		path = path[:i]
	}
}

// issuePath turns "Input.kids[1].age" into "kids.1.age".
func issuePath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

func issueMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"|"+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "oneof":
		allowed := strings.Fields(fe.Param())
		return fmt.Sprintf("Invalid enum value. Expected '%s', received '%v'",
			strings.Join(allowed, "' | '"), fe.Value())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Array must contain at least %s element(s)", fe.Param())
		}
		return "Number must be greater than or equal to " + fe.Param()
	case "max":
		return "Number must be less than or equal to " + fe.Param()
	}
	return fmt.Sprintf("Failed %s validation", fe.Tag())
}

// submission copies a validated Input into its typed form.
// PRE: in passed structValidator
func (in Input) submission() Submission {
	s := Submission{
		FullName:                   in.FullName,
		Email:                      in.Email,
		Phone:                      in.Phone,
		Department:                 in.Department,
		Gender:                     in.Gender,
		ParentTshirtSize:           in.ParentTshirtSize,
		BringingKids:               *in.BringingKids,
		NumberOfKids:               in.NumberOfKids,
		BringingSpouse:             in.BringingSpouse,
		EntertainmentSports:        in.EntertainmentSports,
		InterestedInCompeting:      *in.InterestedInCompeting,
		CompetitiveSports:          in.CompetitiveSports,
		LastExercise:               in.LastExercise,
		MedicalConditions:          in.MedicalConditions,
		CurrentMedications:         in.CurrentMedications,
		PreviousInjuries:           in.PreviousInjuries,
		PhysicalLimitations:        in.PhysicalLimitations,
		HealthConcerns:             in.HealthConcerns,
		HasMedicalConditions:       in.HasMedicalConditions,
		HasHeartCondition:          in.HasHeartCondition,
		HasChestPain:               in.HasChestPain,
		HasBalanceIssues:           in.HasBalanceIssues,
		HasOtherHealthInfo:         in.HasOtherHealthInfo,
		IsTakingMedications:        in.IsTakingMedications,
		HasImmediateHealthConcerns: in.HasImmediateHealthConcerns,
		GuardianName:               in.GuardianName,
		GuardianSignature:          in.GuardianSignature,
		EmergencyContactName:       in.EmergencyContactName,
		EmergencyContactPhone:      in.EmergencyContactPhone,
		EmergencyContactRelation:   in.EmergencyContactRelation,
		DoctorClearance:            *in.DoctorClearance,
	}
	for _, k := range in.Kids {
		s.Kids = append(s.Kids, Kid{Name: k.Name, Age: *k.Age, Gender: k.Gender, TshirtSize: k.TshirtSize})
	}
	if in.Spouse != nil {
		s.Spouse = &Spouse{
			Name:       in.Spouse.Name,
			Age:        *in.Spouse.Age,
			Gender:     in.Spouse.Gender,
			TshirtSize: in.Spouse.TshirtSize,
		}
	}
	return s
}
