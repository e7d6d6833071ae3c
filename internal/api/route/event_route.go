package route

import (
	"github.com/Coubiac/signstamp/internal/api/controller"
	"github.com/gin-gonic/gin"
)

func NewEventRouter(group *gin.RouterGroup, source controller.EventSource, opener controller.OpenHandler) {
	ec := controller.NewEventController(source, opener)

	group.GET("events", ec.Stream)
	group.POST("open", ec.Open)
}
