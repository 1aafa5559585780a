// Package echoroute integrates address validation with echo: a middleware
// that rejects requests carrying an invalid address, and a route group that
// validates or normalizes on demand.
package echoroute

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rotisserie/eris"

	"github.com/vey/vey-go/pkg/adapter"
	"github.com/vey/vey-go/pkg/vey"
)

// Prefix is where NewGroup mounts the routes.
const Prefix = "/api/vey"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

// ValidationBody is the response of POST /validate.
type ValidationBody struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type reply struct {
	status int
	body   any
}

func (r *reply) send(c echo.Context) error {
	return c.JSON(r.status, r.body)
}

// ValidateAddress returns middleware that checks the address in JSON POST
// bodies of the form {"address": {...}, "countryCode": "..."} before the
// wrapped handler runs. Invalid addresses get 400 with the error list;
// failed calls get 500. Requests without both keys, and valid addresses, pass
// through with the body intact.
func ValidateAddress(client vey.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodPost || !isJSON(req.Header.Get(echo.HeaderContentType)) {
				return next(c)
			}

			body, err := readBody(req)
			if err != nil {
				return (&reply{http.StatusBadRequest, ErrorBody{Error: "Invalid request", Details: err.Error()}}).send(c)
			}
			if !hasAddressKeys(body) {
				return next(c)
			}

			if r := adapter.Validate[[]byte, *reply](req.Context(), client, gateCodec{}, body); r != nil {
				return r.send(c)
			}
			return next(c)
		}
	}
}

// Register adds POST /validate and POST /normalize to g.
func Register(g *echo.Group, client vey.Client) {
	g.POST("/validate", func(c echo.Context) error {
		body, err := readBody(c.Request())
		if err != nil {
			return routeCodec{}.EncodeFailure(&adapter.DecodeError{Err: err}).send(c)
		}
		return adapter.Validate[[]byte, *reply](c.Request().Context(), client, routeCodec{}, body).send(c)
	})
	g.POST("/normalize", func(c echo.Context) error {
		body, err := readBody(c.Request())
		if err != nil {
			return routeCodec{}.EncodeFailure(&adapter.DecodeError{Err: err}).send(c)
		}
		return adapter.Normalize[[]byte, *reply](c.Request().Context(), client, routeCodec{}, body).send(c)
	})
}

// NewGroup mounts the routes on e under Prefix.
func NewGroup(e *echo.Echo, client vey.Client, m ...echo.MiddlewareFunc) *echo.Group {
	g := e.Group(Prefix, m...)
	Register(g, client)
	return g
}

// readBody drains the request body and puts a fresh reader back so later
// handlers can read it again.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read request body")
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == echo.MIMEApplicationJSON || (strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}

func hasAddressKeys(body []byte) bool {
	if !json.Valid(body) {
		// Malformed JSON still goes through the codec so it is reported.
		return len(bytes.TrimSpace(body)) > 0
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return false
	}
	_, hasAddr := raw["address"]
	_, hasCC := raw["countryCode"]
	return hasAddr && hasCC
}

// wireRequest is the wire-shaped body: the address uses the API's keys.
type wireRequest struct {
	Address     *vey.Address `json:"address"`
	CountryCode *string      `json:"countryCode"`
}

type wireDecoder struct{}

func (wireDecoder) DecodeRequest(body []byte) (adapter.Request, error) {
	var req wireRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return adapter.Request{}, eris.Wrap(err, "invalid JSON body")
	}
	if req.Address == nil {
		return adapter.Request{}, eris.New(`missing "address"`)
	}
	if req.CountryCode == nil {
		return adapter.Request{}, eris.New(`missing "countryCode"`)
	}
	return adapter.Request{Address: *req.Address, CountryCode: *req.CountryCode}, nil
}

func failureReply(err error) *reply {
	if adapter.IsDecodeError(err) {
		return &reply{http.StatusBadRequest, ErrorBody{Error: "Invalid request", Details: err.Error()}}
	}
	return &reply{http.StatusInternalServerError, ErrorBody{Error: "Validation failed", Details: err.Error()}}
}

// gateCodec answers nil when the wrapped handler should run.
type gateCodec struct{ wireDecoder }

func (gateCodec) EncodeValidation(res *vey.ValidationResult) *reply {
	if res.Valid {
		return nil
	}
	details := res.Errors
	if details == nil {
		details = []string{}
	}
	return &reply{http.StatusBadRequest, ErrorBody{Error: "Invalid address", Details: details}}
}

func (gateCodec) EncodeAddress(*vey.Address) *reply { return nil }

func (gateCodec) EncodeFailure(err error) *reply { return failureReply(err) }

// routeCodec renders results of the group routes.
type routeCodec struct{ wireDecoder }

func (routeCodec) EncodeValidation(res *vey.ValidationResult) *reply {
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	return &reply{http.StatusOK, ValidationBody{Valid: res.Valid, Errors: errs}}
}

func (routeCodec) EncodeAddress(addr *vey.Address) *reply {
	return &reply{http.StatusOK, addr}
}

func (routeCodec) EncodeFailure(err error) *reply { return failureReply(err) }
