package returns

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldOrder = map[string]int{
	"product":       0,
	"store_name":    1,
	"category":      2,
	"cost":          3,
	"return_reason": 4,
	"approved_flag": 5,
	"origin":        6,
}

var candidateValidator = newCandidateValidator()

func newCandidateValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("return_category", func(fl validator.FieldLevel) bool {
		return isCategory(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register return_category validation: %v", err))
	}

	v.RegisterStructValidation(validateCost, Candidate{})
	return v
}

// Form submissions must carry a positive cost. Natural-language candidates
// may carry the 0.0 sentinel left by extraction defaulting.
func validateCost(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(Candidate)
	if !ok {
		return
	}

	if math.IsNaN(c.Cost) || math.IsInf(c.Cost, 0) {
		sl.ReportError(c.Cost, "cost", "Cost", "number", "")
		return
	}
	if c.Origin == OriginNaturalLanguage {
		if c.Cost < 0 {
			sl.ReportError(c.Cost, "cost", "Cost", "gte", "0")
		}
		return
	}
	if c.Cost <= 0 {
		sl.ReportError(c.Cost, "cost", "Cost", "gt", "0")
	}
}

// Normalize trims text fields and maps category and approved flag onto
// their enumerated spelling when they match case-insensitively.
func Normalize(c Candidate) Candidate {
	return Candidate{
		Product:      strings.TrimSpace(c.Product),
		StoreName:    strings.TrimSpace(c.StoreName),
		Category:     normalizeCategory(string(c.Category)),
		Cost:         c.Cost,
		ReturnReason: strings.TrimSpace(c.ReturnReason),
		ApprovedFlag: normalizeApproved(string(c.ApprovedFlag)),
		Origin:       Origin(strings.TrimSpace(string(c.Origin))),
	}
}

// Validate normalizes c and checks every field rule independently. On
// failure the returned *ValidationError lists one FieldError per violated field.
func Validate(c Candidate) (Candidate, error) {
	normalized := Normalize(c)

	err := candidateValidator.Struct(normalized)
	if err == nil {
		return normalized, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Candidate{}, fmt.Errorf("validate candidate: %w", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	seen := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		if _, dup := seen[fe.Field()]; dup {
			continue
		}
		seen[fe.Field()] = struct{}{}
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fieldOrder[fields[i].Field] < fieldOrder[fields[j].Field]
	})

	return Candidate{}, &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must not be less than %s", fe.Param())
	case "number":
		return "must be a finite number"
	case "return_category":
		names := make([]string, 0, len(categories))
		for _, c := range categories {
			names = append(names, string(c))
		}
		return fmt.Sprintf("must be one of %s", strings.Join(names, ", "))
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s rule", fe.Tag())
	}
}
