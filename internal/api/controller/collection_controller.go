package controller

import (
	"net/http"

	"github.com/Coubiac/signstamp/internal/repository"
	"github.com/gin-gonic/gin"
)

// CollectionController exposes a persisted collection as a single resource.
// GET returns the whole collection, PUT replaces it.
type CollectionController[T any] struct {
	Store repository.Store[T]
}

// RegisterRoutes registers the load and save endpoints for a collection on the given router group.
func (cc *CollectionController[T]) RegisterRoutes(rg *gin.RouterGroup, resource string) {
	rg.GET("/"+resource, cc.Load)
	rg.PUT("/"+resource, cc.Save)
}

// Load handles GET requests and returns the stored collection, possibly empty.
func (cc *CollectionController[T]) Load(c *gin.Context) {
	items, err := cc.Store.Load()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Save handles PUT requests and overwrites the stored collection with the request body.
func (cc *CollectionController[T]) Save(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	// same rules as a collection file read from disk
	items, err := repository.DecodeCollection[T](body)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := cc.Store.Save(items); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
