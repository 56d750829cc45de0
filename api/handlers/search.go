package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/askthat/llm"
	"github.com/meghashyamc/askthat/logger"
	"github.com/meghashyamc/askthat/ratelimit"
	"github.com/meghashyamc/askthat/services/answer"
	"github.com/meghashyamc/askthat/validation"
)

type SearchRequest struct {
	Query string `form:"query" json:"query" validate:"required,valid_query,min=1,max=1000"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *answer.Service, limiter *ratelimit.Limiter, validator *validation.Validator) {
	router.GET("/search", admissionMiddleware(limiter, logger), handleSearch(service, logger, validator))
}

// admissionMiddleware is the rate-limiting gate in front of the answer
// pipeline, keyed by client IP.
func admissionMiddleware(limiter *ratelimit.Limiter, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := limiter.Admit(c.ClientIP()); err != nil {
			var throttled *ratelimit.ThrottledError
			if errors.As(err, &throttled) {
				c.Header("Retry-After", strconv.Itoa(throttled.RetryAfterSeconds()))
			}
			logger.Warn("request throttled", "client", c.ClientIP())
			c.Abort()
			writeResponse(c, nil, http.StatusTooManyRequests, []string{"too many requests, please retry later"})
			return
		}

		c.Next()
	}
}

func handleSearch(service *answer.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		result, err := service.Search(c.Request.Context(), request.Query)
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, searchErrorStatus(err), []string{err.Error()})
			return
		}

		writeResponse(c, result, http.StatusOK, nil)
	}
}

func searchErrorStatus(err error) int {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
