package detectionHandler

import (
	"context"
	"fmt"
	"io"
	"time"

	"CabbageAI/internal/api/detection"
	"CabbageAI/internal/middleware"
	contextPkg "CabbageAI/pkg/context"
	"CabbageAI/pkg/handlerUtil"
	"CabbageAI/pkg/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

func (h *DetectionHandler) Predict(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c := contextPkg.FromFiberCtx(ctx)

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile(detection.UploadField)
	if err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"error":      err.Error(),
		}).Debug("Upload field missing")
		return errHandler.Handle(ctx, requestID, detection.ErrMissingFile, ctx.Path(), "form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	fileContent, err := file.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, detection.ErrPredictionFailed(err), ctx.Path(), "open_file")
	}
	defer fileContent.Close()

	imageData, err := io.ReadAll(fileContent)
	if err != nil {
		return errHandler.Handle(ctx, requestID, detection.ErrPredictionFailed(err), ctx.Path(), "read_file")
	}

	result, err := h.detectionService.Predict(c, imageData)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "predict")
	}

	h.log.WithFields(log.Fields{
		"request_id":  requestID,
		"path":        ctx.Path(),
		"predictions": len(result.Predictions),
	}).Info("Prediction successful")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

func (h *DetectionHandler) handlePredictWebSocket(c *websocket.Conn) {
	h.log.Info("Prediction WebSocket client connected")
	defer h.log.Info("Prediction WebSocket client disconnected")

	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	ctx := contextPkg.WithRequestID(context.Background(), requestID)

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Prediction WebSocket error: %v", err)
			} else {
				h.log.Info("Prediction WebSocket connection closed")
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		reply := h.predictFrame(ctx, message)

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}

		if err := c.SetWriteDeadline(time.Time{}); err != nil {
			h.log.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}

// predictFrame runs one WebSocket frame through the prediction service. The
// upgraded connection is outside the recover middleware, so a panic is
// turned into an error reply here.
func (h *DetectionHandler) predictFrame(ctx context.Context, message []byte) (reply interface{}) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Errorf("Recovered from panic while processing prediction frame: %v", r)
			reply = detection.ErrorResponse{Error: fmt.Sprintf("%v", r)}
		}
	}()

	result, err := h.detectionService.Predict(ctx, message)
	if err != nil {
		h.log.Errorf("Error processing prediction frame: %v", err)
		return detection.ErrorResponse{Error: err.Error()}
	}

	return result
}
