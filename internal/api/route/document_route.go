package route

import (
	"github.com/Coubiac/signstamp/internal/api/controller"
	"github.com/gin-gonic/gin"
)

func NewDocumentRouter(group *gin.RouterGroup, service controller.DocumentService) {
	dc := controller.NewDocumentController(service)

	group.POST("export", dc.Export)
	group.POST("documents/save", dc.Save)
	group.POST("documents/load", dc.Load)
}
