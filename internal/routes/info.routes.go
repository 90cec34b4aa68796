package routes

import (
	"hostsnap/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterInfoRoutes(r *gin.Engine, collector controllers.SnapshotCollector) {
	info := controllers.NewInfoController(collector)

	r.GET("/get_info", info.GetInfo)
	r.GET("/health", controllers.GetHealth)
}
