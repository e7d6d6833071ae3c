package controller

import (
	"net/http"

	"github.com/Coubiac/signstamp/internal/document"
	"github.com/Coubiac/signstamp/internal/repository"
	"github.com/gin-gonic/gin"
)

// DocumentService is the subset of document.Service the controller needs.
type DocumentService interface {
	SaveAt(path string, data []byte) (string, error)
	LoadFrom(path string) (document.LoadedPdf, error)
	ExportToDownloads(data []byte, desiredName string) (string, error)
}

type ExportRequest struct {
	Bytes    repository.Blob `json:"bytes"`
	FileName string          `json:"fileName"`
}

type SaveRequest struct {
	Bytes repository.Blob `json:"bytes"`
	Path  string          `json:"path" binding:"required"`
}

type LoadRequest struct {
	Path string `json:"path" binding:"required"`
}

// PathResponse carries the final absolute path of a written document.
type PathResponse struct {
	Path string `json:"path"`
}

type DocumentController struct {
	service DocumentService
}

func NewDocumentController(service DocumentService) *DocumentController {
	return &DocumentController{service: service}
}

// Export writes the document into the downloads directory under a non-colliding name.
func (dc *DocumentController) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	path, err := dc.service.ExportToDownloads(req.Bytes, req.FileName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PathResponse{Path: path})
}

func (dc *DocumentController) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	path, err := dc.service.SaveAt(req.Path, req.Bytes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PathResponse{Path: path})
}

func (dc *DocumentController) Load(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	doc, err := dc.service.LoadFrom(req.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
