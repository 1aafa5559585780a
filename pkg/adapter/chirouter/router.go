// Package chirouter exposes address validation as a typed JSON API on a chi
// router.
package chirouter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vey/vey-go/pkg/adapter"
	"github.com/vey/vey-go/pkg/vey"
)

// Prefix is where Mount attaches the routes.
const Prefix = "/api/vey"

// AddressModel is the address shape of the request and normalize response.
type AddressModel struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	Province   *string `json:"province"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

// ValidationRequest is the body of both routes.
type ValidationRequest struct {
	Address     *AddressModel `json:"address" validate:"required"`
	CountryCode string        `json:"country_code" validate:"required"`
}

// ValidationResponse is the body returned by POST /validate.
type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ErrorResponse is the body of every error status.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// NewRouter returns a router serving POST /validate and POST /normalize.
func NewRouter(client vey.Client) chi.Router {
	h := &handler{client: client}
	r := chi.NewRouter()
	r.Post("/validate", h.validate)
	r.Post("/normalize", h.normalize)
	return r
}

// Mount attaches the routes to r under Prefix.
func Mount(r chi.Router, client vey.Client) {
	r.Mount(Prefix, NewRouter(client))
}

type handler struct {
	client vey.Client
}

func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	adapter.Validate[*http.Request, response](r.Context(), h.client, codec{}, r).write(w)
}

func (h *handler) normalize(w http.ResponseWriter, r *http.Request) {
	adapter.Normalize[*http.Request, response](r.Context(), h.client, codec{}, r).write(w)
}

type response struct {
	status int
	body   any
}

func (resp response) write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_ = json.NewEncoder(w).Encode(resp.body)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type codec struct{}

func (codec) DecodeRequest(r *http.Request) (adapter.Request, error) {
	var body ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return adapter.Request{}, fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return adapter.Request{}, fmt.Errorf("field %q is required", verrs[0].Field())
		}
		return adapter.Request{}, err
	}

	return adapter.Request{
		Address: vey.Address{
			Street:     body.Address.Street,
			City:       body.Address.City,
			Province:   body.Address.Province,
			PostalCode: body.Address.PostalCode,
			Country:    body.Address.Country,
		},
		CountryCode: body.CountryCode,
	}, nil
}

func (codec) EncodeValidation(res *vey.ValidationResult) response {
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	return response{status: http.StatusOK, body: ValidationResponse{Valid: res.Valid, Errors: errs}}
}

func (codec) EncodeAddress(addr *vey.Address) response {
	return response{status: http.StatusOK, body: AddressModel{
		Street:     addr.Street,
		City:       addr.City,
		Province:   addr.Province,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}}
}

func (codec) EncodeFailure(err error) response {
	if adapter.IsDecodeError(err) {
		return response{status: http.StatusUnprocessableEntity, body: ErrorResponse{Detail: err.Error()}}
	}
	return response{status: http.StatusInternalServerError, body: ErrorResponse{Detail: err.Error()}}
}
