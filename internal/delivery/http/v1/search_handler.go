package v1

import (
	"context"
	"net/http"

	"go-talent-search-backend/internal/delivery/http/response"
	"go-talent-search-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchUC   domain.SearchUsecase
	feedbackUC domain.FeedbackUsecase
}

func NewSearchHandler(r *gin.RouterGroup, searchUC domain.SearchUsecase, feedbackUC domain.FeedbackUsecase) {
	handler := &SearchHandler{searchUC: searchUC, feedbackUC: feedbackUC}

	search := r.Group("/search")
	{
		search.POST("", handler.Search)
		search.POST("/feedback", handler.SubmitFeedback)
	}
}

// Search godoc
// @Summary      Search candidates
// @Description  Hybrid candidate search: semantic for natural-language queries, keyword for short ones
// @Tags         search
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.SearchResponse}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /search [post]
// @Security     BearerAuth
func (h *SearchHandler) Search(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.searchUC.Search(identityContext(c), &req)
	if err != nil {
		c.Error(err)
		return
	}

	// Cache disposition goes in a header, never in the cached payload itself
	if result.CacheStatus != "" {
		c.Header("X-Cache", result.CacheStatus)
	}

	response.Success(c, http.StatusOK, "Search results", result)
}

// SubmitFeedback godoc
// @Summary      Submit search feedback
// @Description  Record a relevance signal (relevant, clicked, contacted) for a search result
// @Tags         search
// @Accept       json
// @Produce      json
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /search/feedback [post]
// @Security     BearerAuth
func (h *SearchHandler) SubmitFeedback(c *gin.Context) {
	var fb domain.SearchFeedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	id, err := h.feedbackUC.Submit(identityContext(c), &fb)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Feedback recorded", gin.H{"id": id})
}

// identityContext copies the auth keys set by the middleware onto the request
// context under their typed keys, so usecases stay free of gin.
func identityContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	for _, key := range []domain.CtxKey{domain.KeyUserID, domain.KeyUserEmail, domain.KeyUserRole} {
		if v := c.GetString(string(key)); v != "" {
			ctx = context.WithValue(ctx, key, v)
		}
	}
	return ctx
}
