// Package form validates HTML address forms: local field rules first, then
// the remote API, with every failure recorded as a form error.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/vey/vey-go/pkg/adapter"
	"github.com/vey/vey-go/pkg/vey"
)

// FailurePrefix starts the form error recorded when the remote call fails.
const FailurePrefix = "Validation failed: "

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Form is a submitted address form.
type Form struct {
	Street      string `form:"street" validate:"required,max=255"`
	City        string `form:"city" validate:"required,max=100"`
	Province    string `form:"province" validate:"max=100"`
	PostalCode  string `form:"postal_code" validate:"required,max=20"`
	CountryCode string `form:"country_code" validate:"required,max=2"`

	// Errors holds form-level messages not tied to one field.
	Errors []string `form:"-"`
	// FieldErrors holds messages keyed by form field name.
	FieldErrors map[string][]string `form:"-"`

	client vey.Client
}

// New binds submitted values. client may be nil, in which case only the
// local field rules run.
func New(values url.Values, client vey.Client) *Form {
	return &Form{
		Street:      value(values, "street"),
		City:        value(values, "city"),
		Province:    value(values, "province"),
		PostalCode:  value(values, "postal_code"),
		CountryCode: value(values, "country_code"),
		client:      client,
	}
}

// value trims the submitted value and puts it in NFC form, so composed and
// decomposed kana or accents compare equal.
func value(values url.Values, key string) string {
	return norm.NFC.String(strings.TrimSpace(values.Get(key)))
}

// AddError records msg against field, or as a form-level error when field
// is empty.
func (f *Form) AddError(field, msg string) {
	if field == "" {
		f.Errors = append(f.Errors, msg)
		return
	}
	if f.FieldErrors == nil {
		f.FieldErrors = make(map[string][]string)
	}
	f.FieldErrors[field] = append(f.FieldErrors[field], msg)
}

// IsValid reports whether no errors have been recorded.
func (f *Form) IsValid() bool {
	return len(f.Errors) == 0 && len(f.FieldErrors) == 0
}

// Clean runs the field rules and, when they pass and a client is set, the
// remote validation. It never returns an error: every failure becomes a form
// error. It reports whether the form is valid. When any field rule fails the
// remote call is skipped, so partially cleaned values are never sent.
func (f *Form) Clean(ctx context.Context) bool {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			f.AddError("", FailurePrefix+err.Error())
			return false
		}
		for _, fe := range verrs {
			f.AddError(fe.Field(), fieldMessage(fe))
		}
		return false
	}

	if f.client == nil {
		return f.IsValid()
	}

	for _, msg := range adapter.Validate[*Form, []string](ctx, f.client, codec{}, f) {
		f.AddError("", msg)
	}
	return f.IsValid()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "len":
		return fmt.Sprintf("Ensure this value has exactly %s characters.", fe.Param())
	default:
		return "Enter a valid value."
	}
}

// codec maps the remote outcome to form-level error messages.
type codec struct{}

func (codec) DecodeRequest(f *Form) (adapter.Request, error) {
	return adapter.Request{
		Address: vey.Address{
			Street:     nonEmpty(f.Street),
			City:       nonEmpty(f.City),
			Province:   nonEmpty(f.Province),
			PostalCode: nonEmpty(f.PostalCode),
		},
		CountryCode: f.CountryCode,
	}, nil
}

func (codec) EncodeValidation(res *vey.ValidationResult) []string {
	if res.Valid {
		return nil
	}
	return res.Errors
}

func (codec) EncodeAddress(*vey.Address) []string { return nil }

func (codec) EncodeFailure(err error) []string {
	return []string{FailurePrefix + err.Error()}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Response is the JSON body written by Handler.
type Response struct {
	Valid       bool                `json:"valid"`
	Errors      []string            `json:"errors"`
	FieldErrors map[string][]string `json:"field_errors"`
}

// Handler accepts a POSTed address form and answers with its errors as JSON:
// 200 when the form is valid, 400 otherwise.
func Handler(client vey.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
			return
		}

		f := New(r.PostForm, client)
		valid := f.Clean(r.Context())

		resp := Response{
			Valid:       valid,
			Errors:      f.Errors,
			FieldErrors: f.FieldErrors,
		}
		if resp.Errors == nil {
			resp.Errors = []string{}
		}
		if resp.FieldErrors == nil {
			resp.FieldErrors = map[string][]string{}
		}

		status := http.StatusOK
		if !valid {
			status = http.StatusBadRequest
			zap.L().Debug("form: rejected address",
				zap.Int("form_errors", len(f.Errors)),
				zap.Int("field_errors", len(f.FieldErrors)),
			)
		}

		writeJSON(w, status, resp)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
