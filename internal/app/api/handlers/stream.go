package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/internal/app/api/middleware"
	"github.com/fatflowers/gymgate/internal/app/service/broadcast"
	"github.com/fatflowers/gymgate/pkg/logctx"
	"github.com/fatflowers/gymgate/pkg/tool"
)

// @Summary      Event stream
// @Description  Long-lived text/event-stream delivering check-in activity for the caller's tenant, optionally narrowed to one location.
// @Tags         Events
// @Produce      text/event-stream
// @Param        location_id query string false "Narrow to a single gym"
// @Security     BearerAuth
// @Router       /api/v1/events/stream [get]
func ApiEventStream(hub *broadcast.Hub, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		dc := middleware.DeviceFromGin(c)

		var locationID *string
		if loc := c.Query("location_id"); loc != "" {
			locationID = &loc
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Writer.Flush()

		subID := tool.GenerateUUIDV7()
		sub := hub.Subscribe(subID, dc.CompanyID, locationID)
		defer hub.Unsubscribe(subID)

		lg := logctx.FromGin(c, log)
		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := writeSSE(c, ev); err != nil {
					lg.Warnw("stream write failed", "subscriber_id", subID, "err", err)
					return
				}
				hub.Touch(subID)
			}
		}
	}
}

// writeSSE frames one event as id:/event:/data: lines with a blank-line
// terminator and flushes it to the wire.
func writeSSE(c *gin.Context, ev broadcast.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

func RegisterStreamRoutes(r gin.IRouter, hub *broadcast.Hub, log *zap.SugaredLogger) {
	r.GET("/stream", ApiEventStream(hub, log))
}
