package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, authRequired gin.HandlerFunc) {
	api := router.Group("/api")
	{
		api.GET("/properties", handler.ListProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.GET("/properties/:id/view", handler.RecordView)
		api.POST("/inquiries", handler.SubmitInquiry)
		api.POST("/agent/login", handler.Login)

		agent := api.Group("/agent", authRequired)
		{
			agent.GET("/properties", handler.ListAgentProperties)
			agent.POST("/properties", handler.CreateProperty)
			agent.GET("/properties/:id", handler.GetAgentProperty)
			agent.PUT("/properties/:id", handler.UpdateProperty)
			agent.DELETE("/properties/:id", handler.DeleteProperty)
			agent.GET("/inquiries", handler.ListInquiries)
		}
	}
}
