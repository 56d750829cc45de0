package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/askthat/logger"
	"github.com/meghashyamc/askthat/services/answer"
)

func SetupHealth(router *gin.Engine, logger logger.Logger, service *answer.Service) {
	router.GET("/health", handleHealth(service))
}

func handleHealth(service *answer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeResponse(c, service.Health(c.Request.Context()), http.StatusOK, nil)
	}
}
