package controller

import (
	"io"
	"net/http"

	"github.com/Coubiac/signstamp/internal/bridge"
	"github.com/Coubiac/signstamp/internal/events"
	"github.com/Coubiac/signstamp/internal/logger"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// EventSource hands out subscriptions to outbound UI events.
type EventSource interface {
	Subscribe() (<-chan events.Event, func())
}

// OpenHandler forwards file-open requests to the UI.
type OpenHandler interface {
	Handle(req bridge.OpenRequest) int
}

type OpenResponse struct {
	Forwarded int `json:"forwarded"`
}

type EventController struct {
	source EventSource
	opener OpenHandler
}

func NewEventController(source EventSource, opener OpenHandler) *EventController {
	return &EventController{source: source, opener: opener}
}

// Stream sends events to the client as server-sent events until the client disconnects
// or the hub closes the subscription.
func (ec *EventController) Stream(c *gin.Context) {
	ch, cancel := ec.source.Subscribe()
	defer cancel()

	log := logger.WithComponent("events")
	log.Debug("event stream subscriber attached")
	defer log.Debug("event stream subscriber detached")

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{Id: ev.ID, Event: ev.Name, Data: ev.Payload})
			return true
		}
	})
}

// Open accepts paths and file URLs from the OS or from a second instance of the application.
// Candidates that are not existing PDF files are dropped.
func (ec *EventController) Open(c *gin.Context) {
	var req bridge.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	n := ec.opener.Handle(req)
	c.JSON(http.StatusAccepted, OpenResponse{Forwarded: n})
}
