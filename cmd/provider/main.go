package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SendRequest mirrors the payload the dispatch service submits.
type SendRequest struct {
	To      string `json:"to" binding:"required"`
	From    string `json:"from"`
	Content string `json:"content" binding:"required"`
}

// SendResponse is the acceptance receipt. The id is what later webhook
// callbacks reference as message_id.
type SendResponse struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type webhookPayload struct {
	Event string           `json:"event"`
	ID    string           `json:"id"`
	Data  webhookEventData `json:"data"`
}

type webhookEventData struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status       string    `json:"status"`
	ProviderID   string    `json:"provider_id"`
	Timestamp    time.Time `json:"timestamp"`
	DeliveryRate float64   `json:"delivery_rate"`
}

// MockProvider simulates an SMS provider: it accepts submissions, then
// calls the dispatch service's webhook back with delivery reports and,
// occasionally, an inbound reply.
type MockProvider struct {
	deliveryRate  float64
	replyRate     float64
	minDelay      time.Duration
	maxDelay      time.Duration
	webhookURL    string
	webhookSecret string
	providerID    string
	rng           *rand.Rand
	httpClient    *http.Client
}

func NewMockProvider(deliveryRate, replyRate float64, minDelay, maxDelay time.Duration, webhookURL, webhookSecret string) *MockProvider {
	return &MockProvider{
		deliveryRate:  deliveryRate,
		replyRate:     replyRate,
		minDelay:      minDelay,
		maxDelay:      maxDelay,
		webhookURL:    webhookURL,
		webhookSecret: webhookSecret,
		providerID:    "MOCK_PROVIDER_" + uuid.New().String()[:8],
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// accept registers a submission and schedules the async callbacks.
func (m *MockProvider) accept(req *SendRequest) *SendResponse {
	resp := &SendResponse{
		ID:         uuid.New().String(),
		Status:     "accepted",
		AcceptedAt: time.Now(),
	}

	go m.simulateCallbacks(resp.ID, req)

	return resp
}

func (m *MockProvider) simulateCallbacks(messageID string, req *SendRequest) {
	if m.webhookURL == "" {
		return
	}

	time.Sleep(m.randomDelay())

	if m.rng.Float64() >= m.deliveryRate {
		log.Warn().
			Str("message_id", messageID).
			Str("phone", req.To).
			Msg("SMS dropped, no delivery report")
		return
	}

	m.fireWebhook(webhookPayload{
		Event: "message.delivered",
		ID:    uuid.New().String(),
		Data: webhookEventData{
			MessageID: messageID,
			To:        req.To,
			From:      req.From,
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})

	if m.rng.Float64() < m.replyRate {
		time.Sleep(m.randomDelay())
		m.fireWebhook(webhookPayload{
			Event: "message.received",
			ID:    uuid.New().String(),
			Data: webhookEventData{
				MessageID: messageID,
				From:      req.To,
				To:        req.From,
				Content:   "CONFIRM",
				Timestamp: time.Now().Format(time.RFC3339),
			},
		})
	}
}

func (m *MockProvider) fireWebhook(payload webhookPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal webhook payload")
		return
	}

	req, err := http.NewRequest(http.MethodPost, m.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-provider-signature", m.sign(body))

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("event", payload.Event).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	log.Info().
		Str("event", payload.Event).
		Str("message_id", payload.Data.MessageID).
		Int("status", resp.StatusCode).
		Msg("webhook delivered")
}

func (m *MockProvider) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(m.webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *MockProvider) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

// Handler struct holds the mock provider and routes
type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

// SendSMS handles single SMS send requests
func (h *Handler) SendSMS(c *gin.Context) {
	var req SendRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if len(req.To) < 7 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid destination number",
		})
		return
	}

	response := h.provider.accept(&req)

	log.Info().
		Str("message_id", response.ID).
		Str("phone", req.To).
		Msg("Received SMS send request")

	c.JSON(http.StatusAccepted, response)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		ProviderID:   h.provider.providerID,
		Timestamp:    time.Now(),
		DeliveryRate: h.provider.deliveryRate,
	})
}

// UpdateConfig allows changing provider behavior at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
		ReplyRate    *float64 `json:"reply_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.DeliveryRate != nil && *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
		h.provider.deliveryRate = *config.DeliveryRate
		log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
	}
	if config.ReplyRate != nil && *config.ReplyRate >= 0 && *config.ReplyRate <= 1.0 {
		h.provider.replyRate = *config.ReplyRate
		log.Info().Float64("rate", *config.ReplyRate).Msg("Updated reply rate")
	}

	c.JSON(http.StatusOK, gin.H{
		"delivery_rate": h.provider.deliveryRate,
		"reply_rate":    h.provider.replyRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sms/send", handler.SendSMS)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 1)
	replyRate := getEnvFloat("REPLY_RATE", 0)
	minDelay := getEnvDuration("MIN_DELAY", 1*time.Second)
	maxDelay := getEnvDuration("MAX_DELAY", 5*time.Second)
	webhookURL := getEnv("WEBHOOK_URL", "")
	webhookSecret := getEnv("WEBHOOK_SECRET", "")

	log.Info().
		Str("port", port).
		Float64("delivery_rate", deliveryRate).
		Float64("reply_rate", replyRate).
		Str("webhook_url", webhookURL).
		Msg("Starting Mock SMS Provider")

	provider := NewMockProvider(deliveryRate, replyRate, minDelay, maxDelay, webhookURL, webhookSecret)
	handler := NewHandler(provider)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
