package telegram

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anasco119/QueriesShot/middleware"
)

// UpdateHandler consumes inbound updates. Each call runs on its own
// goroutine; implementations own their synchronization.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// Gateway connects the Bot API to the message pipeline, either by long
// polling or by serving Telegram's webhook callbacks.
type Gateway struct {
	client      *Client
	handler     UpdateHandler
	pollTimeout time.Duration
}

// NewGateway creates a Gateway.
func NewGateway(client *Client, handler UpdateHandler) *Gateway {
	return &Gateway{
		client:      client,
		handler:     handler,
		pollTimeout: 30 * time.Second,
	}
}

// RunPolling long-polls getUpdates until ctx is cancelled. Transport
// errors back off briefly and retry; a lost poll loses nothing because
// unconfirmed updates are redelivered by Telegram.
func (g *Gateway) RunPolling(ctx context.Context) error {
	// A leftover webhook blocks getUpdates.
	if err := g.client.DeleteWebhook(ctx); err != nil {
		log.Printf("WARN: [Gateway] Could not clear webhook before polling: %v", err)
	}
	log.Println("INFO: [Gateway] Long polling started.")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, next, err := g.client.GetUpdates(ctx, offset, g.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("WARN: [Gateway] getUpdates failed, retrying shortly: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}
		offset = next

		for _, update := range updates {
			update := update
			go g.handler.HandleUpdate(ctx, update)
		}
	}
}

// RunWebhook registers the webhook at publicURL/<token> and serves
// Telegram's callbacks plus a liveness probe. The token in the path is
// the shared secret: requests to any other path are rejected.
func (g *Gateway) RunWebhook(ctx context.Context, addr, publicURL, token string) error {
	webhookURL := strings.TrimRight(publicURL, "/") + "/" + token
	if err := g.client.SetWebhook(ctx, webhookURL); err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.SetTrustedProxies(nil)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/"+token, func(c *gin.Context) {
		var update Update
		if err := c.ShouldBindJSON(&update); err != nil {
			log.Printf("WARN: [Gateway] Discarding malformed webhook payload: %v", err)
			c.Status(http.StatusBadRequest)
			return
		}
		// Acknowledge immediately; the pipeline runs on its own goroutine
		// so Telegram never sees handler latency.
		go g.handler.HandleUpdate(context.Background(), update)
		c.Status(http.StatusOK)
	})

	log.Printf("INFO: [Gateway] Webhook server listening on %s.", addr)
	return r.Run(addr)
}
