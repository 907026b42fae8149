package handlers

import (
	"errors"
	"net/http"

	"solmentions/internal/ingest"
	"solmentions/internal/intent"
	"solmentions/internal/models"
	"solmentions/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngestionHandler receives posts and giveaway participants from scraper
// collaborators that push over HTTP instead of streaming.
type IngestionHandler struct {
	posts     *store.PostStore
	giveaways *store.GiveawayStore
}

// NewIngestionHandler creates a new ingestion handler
func NewIngestionHandler(posts *store.PostStore, giveaways *store.GiveawayStore) *IngestionHandler {
	return &IngestionHandler{posts: posts, giveaways: giveaways}
}

// CreatePost handles POST /api/posts. Inserting an already-seen post ID is a
// no-op and still returns 202.
func (h *IngestionHandler) CreatePost(c *gin.Context) {
	var event ingest.FeedEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post payload", "details": err.Error()})
		return
	}
	if event.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post ID is required"})
		return
	}

	if err := h.posts.Insert(ingest.EventToPost(&event)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store post", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "post recorded", "id": event.ID})
}

// participantRequest is the body for participant ingestion
type participantRequest struct {
	Username      string `json:"username" binding:"required"`
	WalletAddress string `json:"wallet_address"`
	SourceLink    string `json:"source_link"`
}

// AddParticipant handles POST /api/giveaways/:id/participants. At most one
// entry exists per (giveaway, username); duplicates return 200 with
// created=false.
func (h *IngestionHandler) AddParticipant(c *gin.Context) {
	giveawayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID"})
		return
	}

	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid participant payload", "details": err.Error()})
		return
	}

	if req.WalletAddress != "" && !intent.IsAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wallet address is not a valid base58 account address"})
		return
	}

	g, err := h.giveaways.ByID(giveawayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Giveaway not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load giveaway", "details": err.Error()})
		return
	}
	if g.Completed {
		c.JSON(http.StatusConflict, gin.H{"error": "Giveaway already drawn"})
		return
	}

	created, err := h.giveaways.AddParticipant(&models.Participant{
		GiveawayID:    giveawayID,
		Username:      req.Username,
		WalletAddress: req.WalletAddress,
		SourceLink:    req.SourceLink,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store participant", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created, "giveaway_id": giveawayID})
}

// GetGiveaway handles GET /api/giveaways/:id
func (h *IngestionHandler) GetGiveaway(c *gin.Context) {
	giveawayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid giveaway ID"})
		return
	}

	g, err := h.giveaways.ByID(giveawayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Giveaway not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load giveaway", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, g)
}
