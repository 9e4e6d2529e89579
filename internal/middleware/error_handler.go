package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apiError "qms-document-control/internal/errors"
)

// toAPIError maps typed core errors to HTTP errors; anything unwrapped is a
// 500.
func toAPIError(err error) *apiError.APIError {
	var apiErr *apiError.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validation *apiError.ValidationError
	if errors.As(err, &validation) {
		return apiError.UnprocessableEntity(validation.Reason, err)
	}

	var invalidState *apiError.InvalidStateError
	if errors.As(err, &invalidState) {
		return apiError.Conflict(invalidState.Reason, err)
	}

	var notFound *apiError.NotFoundError
	if errors.As(err, &notFound) {
		return apiError.NotFound(notFound.Error(), err)
	}

	return apiError.Internal(err)
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		// detect any errors
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			apiErr := toAPIError(err)

			// LOGGING
			if apiErr.Status >= 500 {
				log.Error().Err(apiErr.Internal).Msg(apiErr.Message)
			} else {
				log.Info().Err(apiErr.Internal).Msg(apiErr.Message)
			}

			// Respond with JSON
			c.AbortWithStatusJSON(apiErr.Status, apiErr)
		}
	}
}
