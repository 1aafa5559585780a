// Package adapter defines the translation contract shared by the framework
// integrations: decode an inbound request into an address and country code,
// call the client, and encode the outcome in the framework's own shape.
package adapter

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/vey/vey-go/pkg/vey"
)

// Request is the decoded form of an inbound validate or normalize call.
type Request struct {
	Address     vey.Address
	CountryCode string
}

// Codec translates between one framework's request/response values and the
// client. In is what the framework hands the handler; Out is what it expects
// back.
type Codec[In, Out any] interface {
	DecodeRequest(in In) (Request, error)
	EncodeValidation(res *vey.ValidationResult) Out
	EncodeAddress(addr *vey.Address) Out
	EncodeFailure(err error) Out
}

// DecodeError marks a failure caused by the inbound request rather than by
// the remote API.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err came from decoding the inbound request.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Validate decodes in, validates the address, and encodes the result.
func Validate[In, Out any](ctx context.Context, client vey.Client, codec Codec[In, Out], in In) Out {
	req, err := codec.DecodeRequest(in)
	if err != nil {
		return codec.EncodeFailure(asDecodeError(err))
	}

	res, err := client.ValidateAddress(ctx, req.Address, req.CountryCode)
	if err != nil {
		zap.L().Warn("adapter: validate failed",
			zap.String("country_code", req.CountryCode),
			zap.Error(err),
		)
		return codec.EncodeFailure(err)
	}
	return codec.EncodeValidation(res)
}

// Normalize decodes in, normalizes the address, and encodes the result.
func Normalize[In, Out any](ctx context.Context, client vey.Client, codec Codec[In, Out], in In) Out {
	req, err := codec.DecodeRequest(in)
	if err != nil {
		return codec.EncodeFailure(asDecodeError(err))
	}

	addr, err := client.NormalizeAddress(ctx, req.Address, req.CountryCode)
	if err != nil {
		zap.L().Warn("adapter: normalize failed",
			zap.String("country_code", req.CountryCode),
			zap.Error(err),
		)
		return codec.EncodeFailure(err)
	}
	return codec.EncodeAddress(addr)
}

func asDecodeError(err error) error {
	if IsDecodeError(err) {
		return err
	}
	return &DecodeError{Err: err}
}
