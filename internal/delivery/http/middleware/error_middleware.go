package middleware

import (
	"errors"
	"net/http"

	"aiki-site-backend/internal/delivery/http/response"
	"aiki-site-backend/pkg/apperror"
	"aiki-site-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Err != nil {
				logger.Log.Warn("Request failed",
					"request_id", c.GetString("RequestID"),
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			if appErr.Data != nil {
				response.ErrorWithData(c, appErr.Code, appErr.Message, nil, appErr.Data)
				return
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Internal details stay in the log
		logger.Log.Error("Internal Server Error",
			"request_id", c.GetString("RequestID"),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
