package websocket

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
)

// Handler upgrades HTTP requests to event stream connections
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
	}
}

// ParseEventTypes reads event type filters such as "TranscriptCreated,CourseAdded".
// Repeated values are merged. No values means every type.
func ParseEventTypes(values []string) (map[ledger.EventType]bool, error) {
	known := make(map[ledger.EventType]bool, len(ledger.EventTypes))
	for _, t := range ledger.EventTypes {
		known[t] = true
	}

	types := make(map[ledger.EventType]bool)
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			t := ledger.EventType(name)
			if !known[t] {
				return nil, &unknownTypeError{name: name}
			}
			types[t] = true
		}
	}
	return types, nil
}

type unknownTypeError struct{ name string }

func (e *unknownTypeError) Error() string { return "unknown event type " + e.name }

// HandleConnection godoc
// @Summary Stream ledger events
// @Description Upgrades the connection to a WebSocket that receives committed ledger events as JSON
// @Tags events
// @Produce json
// @Param type query string false "Comma separated event types to receive"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Unknown event type"
// @Router /events/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	types, err := ParseEventTypes(c.QueryArray("type"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid event filter").WithField("type").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		types:      types,
		remoteAddr: conn.RemoteAddr().String(),
		logger:     h.logger,
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
