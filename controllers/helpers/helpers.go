package helpers

import (
	"errors"

	"github.com/gookit/validate"

	"github.com/zsmartex/nftex/offers"
)

var (
	ServerInvalidBody   = "server.method.invalid_message_body"
	ServerInvalidQuery  = "server.method.invalid_message_query"
	ServerInternalError = "server.internal_error"
	RecordNotFound      = "record.not_found"
)

type Errors struct {
	Errors []string `json:"errors"`
}

func (e Errors) Size() int {
	return len(e.Errors)
}

func Validate(payload interface{}, err_src *Errors) {
	v := validate.Struct(payload)
	if !v.Validate() {
		for _, errs := range v.Errors.All() {
			for _, err := range errs {
				err_src.Errors = append(err_src.Errors, err)
			}
		}
	}
}

// ErrorStatus maps an engine error onto an HTTP status and an error key.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, offers.ErrUnauthorized):
		return 401, "offer.unauthorized"
	case errors.Is(err, offers.ErrInvalidState):
		return 409, "offer.invalid_state"
	case errors.Is(err, offers.ErrNotExpired):
		return 409, "offer.not_expired"
	case errors.Is(err, offers.ErrInsufficientValue):
		return 422, "offer.insufficient_value"
	case errors.Is(err, offers.ErrConfigValidation):
		return 422, "offer.invalid_config"
	default:
		return 500, ServerInternalError
	}
}
