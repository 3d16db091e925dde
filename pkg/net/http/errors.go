package http

import (
	"errors"

	commonsHttp "github.com/LerianStudio/lib-commons/commons/net/http"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/gofiber/fiber/v2"
)

// WithError returns an error with the given status code and message.
func WithError(c *fiber.Ctx, err error) error {
	var (
		md  pkg.MalformedDocumentError
		tke pkg.TokenError
		ike pkg.InvalidKeyError
		uke pkg.UnsupportedKeyError
		de  pkg.DecryptionError
	)

	switch {
	case errors.As(err, &md):
		return commonsHttp.UnprocessableEntity(c, md.Code, md.Title, md.Error())
	case errors.As(err, &tke):
		return commonsHttp.UnprocessableEntity(c, tke.Code, tke.Title, tke.Error())
	case errors.As(err, &ike):
		return commonsHttp.BadRequest(c, pkg.ValidationKnownFieldsError{
			Code:    ike.Code,
			Title:   ike.Title,
			Message: ike.Message,
		})
	case errors.As(err, &uke):
		return commonsHttp.BadRequest(c, pkg.ValidationKnownFieldsError{
			Code:    uke.Code,
			Title:   uke.Title,
			Message: uke.Message,
		})
	case errors.As(err, &de):
		return commonsHttp.Unauthorized(c, de.Code, de.Title, de.Message)
	}

	switch e := err.(type) {
	case pkg.EntityNotFoundError:
		return commonsHttp.NotFound(c, e.Code, e.Title, e.Message)
	case pkg.ValidationError:
		return commonsHttp.BadRequest(c, pkg.ValidationKnownFieldsError{
			Code:    e.Code,
			Title:   e.Title,
			Message: e.Message,
			Fields:  nil,
		})
	case pkg.UnprocessableOperationError:
		return commonsHttp.UnprocessableEntity(c, e.Code, e.Title, e.Message)
	case pkg.ForbiddenError:
		return commonsHttp.Forbidden(c, e.Code, e.Title, e.Message)
	case pkg.ValidationKnownFieldsError:
		return commonsHttp.BadRequest(c, e)
	default:
		var iErr pkg.InternalServerError
		_ = errors.As(pkg.ValidateInternalError(err, ""), &iErr)

		return commonsHttp.InternalServerError(c, iErr.Code, iErr.Title, iErr.Message)
	}
}
