package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// RecommendationRequest is the body of POST /api/recommend.
type RecommendationRequest struct {
	Mood     string `json:"mood" validate:"required"`
	Genre    string `json:"genre,omitempty"`
	FromDate string `json:"fromDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ToDate   string `json:"toDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Normalize trims every field, validates the result and orders the date
// range so that FromDate <= ToDate. A whitespace-only mood is missing.
func (r RecommendationRequest) Normalize() (RecommendationRequest, error) {
	out := RecommendationRequest{
		Mood:     strings.TrimSpace(r.Mood),
		Genre:    strings.TrimSpace(r.Genre),
		FromDate: strings.TrimSpace(r.FromDate),
		ToDate:   strings.TrimSpace(r.ToDate),
	}

	if err := getValidator().Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return out, err
		}
		for _, fe := range verrs {
			if fe.Field() == "mood" {
				return out, ErrMoodRequired
			}
		}
		return out, fmt.Errorf("%w: %s", ErrInvalidDate, verrs[0].Field())
	}

	// YYYY-MM-DD compares lexically in date order.
	if out.FromDate != "" && out.ToDate != "" && out.FromDate > out.ToDate {
		out.FromDate, out.ToDate = out.ToDate, out.FromDate
	}

	return out, nil
}

// Filters converts the request into movie database search filters.
func (r RecommendationRequest) Filters() SearchFilters {
	f := SearchFilters{FromDate: r.FromDate, ToDate: r.ToDate}
	if r.Genre != "" {
		if code, ok := GenreCode(r.Genre); ok {
			f.GenreID = code
		}
	}
	return f
}
