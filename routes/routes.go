package routes

import (
	"loanbackend/controllers"

	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine) {

	v1 := r.Group("/api")

	{
		v1.POST("/evaluateLoan", controllers.EvaluationController.EvaluateLoan)
		v1.GET("/banks", controllers.EvaluationController.GetBanks)
		v1.GET("/evaluations/recent", controllers.EvaluationController.GetRecentEvaluations)
		v1.POST("/validateStandards", controllers.StandardsController.ValidateStandards)
		v1.GET("/keepServerRunning", controllers.HealthController.IsRunning)
	}
}
