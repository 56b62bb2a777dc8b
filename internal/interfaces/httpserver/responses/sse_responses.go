package responses

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
)

// SetupSSEHeaders writes the headers every SSE response needs and flushes
// them immediately.
func SetupSSEHeaders(reqCtx *gin.Context) {
	reqCtx.Header("Content-Type", "text/event-stream")
	reqCtx.Header("Cache-Control", "no-cache")
	reqCtx.Header("Connection", "keep-alive")
	reqCtx.Header("Access-Control-Allow-Origin", "*")
	reqCtx.Header("Access-Control-Allow-Headers", "Cache-Control")
	reqCtx.Header("Transfer-Encoding", "chunked")
	reqCtx.Writer.WriteHeaderNow()
}

// WriteSSEEvent writes one named SSE frame with a JSON payload and flushes.
func WriteSSEEvent(reqCtx *gin.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(reqCtx.Writer, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	reqCtx.Writer.Flush()
	return nil
}
