package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"petvision/internal/config"
	"petvision/internal/inference"
	"petvision/internal/logger"
	"petvision/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// servedLabels are the only classes the service reports.
var servedLabels = map[string]bool{
	models.LabelCat: true,
	models.LabelDog: true,
}

type Server struct {
	cfg   *config.ServerConfig
	model inference.Model
	log   *logger.Logger

	upgrader websocket.Upgrader
}

func New(cfg *config.ServerConfig, model inference.Model, log *logger.Logger) *Server {
	return &Server{
		cfg:   cfg,
		model: model,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router registers POST /detect, GET /health and GET /ws.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.MaxMultipartMemory = s.cfg.MaxUploadBytes()

	router.POST("/detect", s.handleDetect)
	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.handleStream)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDetect(c *gin.Context) {
	limit := s.cfg.MaxUploadBytes()
	if c.Request.ContentLength > limit {
		respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(c, http.StatusBadRequest, "no file uploaded")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read file")
		return
	}

	dets, err := s.Detect(data)
	if err != nil {
		s.log.Error("detect %s: %v", fileHeader.Filename, err)
		if errors.Is(err, inference.ErrDecode) {
			respondError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, fmt.Sprintf("detection failed: %v", err))
		return
	}

	c.JSON(http.StatusOK, models.DetectionResponse{Detections: dets})
}

// handleStream serves one image per binary message and replies with one JSON
// text message per image until the client hangs up.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warning("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.cfg.MaxUploadBytes())

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warning("websocket read: %v", err)
			}
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		var reply models.DetectionResponse
		dets, err := s.Detect(message)
		if err != nil {
			s.log.Error("detect over websocket: %v", err)
			reply = models.DetectionResponse{Detections: []models.Detection{}, Error: err.Error()}
		} else {
			reply = models.DetectionResponse{Detections: dets}
		}

		if err := conn.WriteJSON(reply); err != nil {
			s.log.Warning("websocket write: %v", err)
			return
		}
	}
}

// Detect runs the model and keeps confident cat and dog boxes, converted to
// top-left plus size.
func (s *Server) Detect(data []byte) ([]models.Detection, error) {
	preds, err := s.model.Predict(data)
	if err != nil {
		return nil, err
	}

	dets := make([]models.Detection, 0, len(preds))
	for _, p := range preds {
		if !servedLabels[p.Label] || float64(p.Confidence) < s.cfg.ConfidenceThreshold {
			continue
		}

		dets = append(dets, models.Detection{
			Label:      p.Label,
			Confidence: float64(p.Confidence),
			X:          p.Box.Min.X,
			Y:          p.Box.Min.Y,
			W:          p.Box.Dx(),
			H:          p.Box.Dy(),
		})
	}

	return dets, nil
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
