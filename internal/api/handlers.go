package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yasmingpt/internal/models"
	"yasmingpt/internal/provider"
	"yasmingpt/internal/service/chat"
	"yasmingpt/internal/service/translate"
	"yasmingpt/internal/store"
	"yasmingpt/internal/worker"
)

// Handler wires HTTP routes to the chat pipeline and the conversation store.
type Handler struct {
	chat      *chat.Service
	translate *translate.Service
	store     *store.Store
}

// NewHandler constructs a Handler instance.
func NewHandler(chatService *chat.Service, translateService *translate.Service, st *store.Store) *Handler {
	return &Handler{
		chat:      chatService,
		translate: translateService,
		store:     st,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/chat", h.postChat)
	api.POST("/regenerate", h.postRegenerate)
	api.GET("/conversations", h.listConversations)
	api.GET("/conversations/:id", h.getConversation)
	api.PUT("/conversations/:id/title", h.updateTitle)
	api.DELETE("/conversations/:id", h.deleteConversation)
	api.POST("/messages/:id/vote", h.postVote)
	api.POST("/translate", h.postTranslate)
	api.POST("/detect-language", h.postDetectLanguage)
	api.GET("/languages", h.listLanguages)
}

type chatRequest struct {
	History        []provider.ChatMessage `json:"history"`
	Model          string                 `json:"model"`
	ConversationID string                 `json:"conversation_id"`
	Temperature    *float64               `json:"temperature"`
	MaxTokens      int                    `json:"max_tokens"`
}

func (h *Handler) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.chat.Chat(c.Request.Context(), chat.ChatRequest{
		History:        req.History,
		Model:          req.Model,
		ConversationID: req.ConversationID,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	payload := gin.H{
		"id":          result.ConversationID,
		"content":     result.Content,
		"used_backup": result.UsedBackup,
	}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, payload)
}

type regenerateRequest struct {
	ConversationID string   `json:"conversation_id"`
	Model          string   `json:"model"`
	Temperature    *float64 `json:"temperature"`
	MaxTokens      int      `json:"max_tokens"`
}

func (h *Handler) postRegenerate(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.chat.Regenerate(c.Request.Context(), chat.RegenerateRequest{
		ConversationID: req.ConversationID,
		Model:          req.Model,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content":     result.Content,
		"used_backup": result.UsedBackup,
	})
}

func (h *Handler) listConversations(c *gin.Context) {
	summaries, err := h.store.ListSummaries(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) getConversation(c *gin.Context) {
	conversation, messages, err := h.store.GetConversationWithMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if messages == nil {
		messages = make([]*models.Message, 0)
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         conversation.ID,
		"title":      conversation.Title,
		"created_at": conversation.CreatedAt,
		"updated_at": conversation.UpdatedAt,
		"messages":   messages,
	})
}

func (h *Handler) updateTitle(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.store.UpdateTitle(c.Request.Context(), c.Param("id"), req.Title); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) deleteConversation(c *gin.Context) {
	if err := h.store.DeleteConversation(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) postVote(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}
	var req struct {
		VoteType models.VoteType `json:"vote_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.VoteType != models.VoteLike && req.VoteType != models.VoteDislike {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vote_type must be like or dislike"})
		return
	}
	if _, err := h.store.AddVote(c.Request.Context(), messageID, req.VoteType); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) postTranslate(c *gin.Context) {
	var req struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.translate.Translate(c.Request.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"translated_text": result.TranslatedText,
		"source_language": result.SourceLanguage,
		"target_language": result.TargetLanguage,
		"original_text":   result.OriginalText,
		"provider":        result.Provider,
	})
}

func (h *Handler) postDetectLanguage(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"language": h.translate.DetectLanguage(c.Request.Context(), req.Text),
	})
}

func (h *Handler) listLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, h.translate.Languages())
}

func parseMessageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return 0, false
	}
	return id, true
}

// respondError translates service errors into HTTP statuses. Unexpected
// errors are logged with context and surfaced as a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrHistoryNotUserEnding),
		errors.Is(err, chat.ErrConversationRequired),
		errors.Is(err, chat.ErrNoMessages),
		errors.Is(err, chat.ErrLastNotAssistant),
		errors.Is(err, store.ErrTitleInvalid),
		errors.Is(err, translate.ErrEmptyText),
		errors.Is(err, translate.ErrUnsupportedLanguage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, worker.ErrBusy), errors.Is(err, worker.ErrConversationBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "server is busy, please retry"})
	case errors.Is(err, chat.ErrRegenerationFailed),
		errors.Is(err, translate.ErrTranslationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
