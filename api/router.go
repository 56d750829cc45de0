package api

import (
	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/askthat/api/handlers"
	"github.com/meghashyamc/askthat/logger"
	"github.com/meghashyamc/askthat/ratelimit"
	"github.com/meghashyamc/askthat/services/answer"
	"github.com/meghashyamc/askthat/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, answers *answer.Service, limiter *ratelimit.Limiter, validator *validation.Validator) {
	handlers.SetupSearch(router, logger, answers, limiter, validator)
	handlers.SetupIndex(router, logger, answers)
	handlers.SetupHealth(router, logger, answers)
}

func newRouter() *gin.Engine {
	router := gin.Default()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
