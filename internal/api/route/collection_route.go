package route

import (
	"github.com/Coubiac/signstamp/internal/api/controller"
	"github.com/Coubiac/signstamp/internal/repository"
	"github.com/gin-gonic/gin"
)

func NewCollectionRouter(group *gin.RouterGroup, signatures repository.SignatureStore, snippets repository.SnippetStore) {
	sc := &controller.CollectionController[repository.StoredSignature]{Store: signatures}
	sc.RegisterRoutes(group, "signatures")

	nc := &controller.CollectionController[string]{Store: snippets}
	nc.RegisterRoutes(group, "snippets")
}
