package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/askthat/logger"
	"github.com/meghashyamc/askthat/services/answer"
)

func SetupIndex(router *gin.Engine, logger logger.Logger, service *answer.Service) {
	router.POST("/index", handleIndex(service, logger))
}

func handleIndex(service *answer.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		logger.Info("rebuilding index", "request_id", requestID)

		result, err := service.RebuildIndex(c.Request.Context())
		if err != nil {
			logger.Error("could not rebuild index", "request_id", requestID, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		logger.Info("index rebuilt", "request_id", requestID, "count", result.Count, "corpus_version", result.CorpusVersion)

		writeResponse(c, result, http.StatusOK, nil)
	}
}
