package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/processor"
)

// ParseRequest is the body of POST /v1/parse. An empty pattern selects ISO.
type ParseRequest struct {
	Text    string `json:"text" validate:"required,max=256"`
	Pattern string `json:"pattern" validate:"omitempty,max=128,directives"`
}

// FormatRequest is the body of POST /v1/format. Date is an ISO Jalali value.
type FormatRequest struct {
	Date    string `json:"date" validate:"required,max=64"`
	Pattern string `json:"pattern" validate:"required,max=128"`
}

// BatchRequest is the body of POST /v1/batch
type BatchRequest struct {
	Mode          string   `json:"mode" validate:"required,oneof=to-jalali to-gregorian reformat"`
	Inputs        []string `json:"inputs" validate:"required,min=1,max=1000,dive,max=256"`
	InputPattern  string   `json:"input_pattern" validate:"omitempty,max=128,directives"`
	InputLayout   string   `json:"input_layout" validate:"omitempty,max=128"`
	OutputPattern string   `json:"output_pattern" validate:"omitempty,max=128"`
	OutputLayout  string   `json:"output_layout" validate:"omitempty,max=128"`
}

// ValueResponse describes a Jalali value
type ValueResponse struct {
	ISO       string `json:"iso"`
	Formatted string `json:"formatted,omitempty"`
	Gregorian string `json:"gregorian"`
	Aware     bool   `json:"aware"`
	Locale    string `json:"locale,omitempty"`
}

// ConvertResponse is the result of a single conversion
type ConvertResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// BatchItem is one entry of BatchResponse
type BatchItem struct {
	Index   int    `json:"index"`
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// BatchResponse summarizes a batch
type BatchResponse struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Skipped    int         `json:"skipped"`
	Results    []BatchItem `json:"results"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("directives", func(fl validator.FieldLevel) bool {
		return len(directive.Unknown(fl.Field().String())) == 0
	})
	return v
}

// validateRequest runs the struct tags and reports failures as a
// ValidationError keyed by JSON field name
func (s *Server) validateRequest(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	vb := errorutil.NewValidationBuilder("request")
	for _, fe := range fieldErrs {
		vb.Check(fe.Field(), fe.Value(), errors.New(validationMessage(fe)))
	}
	return vb.Build()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "exceeds the maximum of " + fe.Param()
	case "directives":
		return fmt.Sprintf("contains unknown directives %s", strings.Join(directive.Unknown(fmt.Sprint(fe.Value())), ", "))
	}
	return "failed " + fe.Tag() + " check"
}

func (r BatchRequest) options() processor.Options {
	return processor.Options{
		Mode:          processor.Mode(r.Mode),
		InputPattern:  r.InputPattern,
		InputLayout:   r.InputLayout,
		OutputPattern: r.OutputPattern,
		OutputLayout:  r.OutputLayout,
	}
}

const (
	gregorianNaive = "2006-01-02T15:04:05.999999"
	gregorianAware = "2006-01-02T15:04:05.999999-07:00"
)

func valueResponse(dt jdate.DateTime, formatted string) ValueResponse {
	layout := gregorianNaive
	if dt.IsAware() {
		layout = gregorianAware
	}
	return ValueResponse{
		ISO:       dt.ISOFormat(),
		Formatted: formatted,
		Gregorian: dt.Gregorian().Format(layout),
		Aware:     dt.IsAware(),
		Locale:    dt.Locale().String(),
	}
}
