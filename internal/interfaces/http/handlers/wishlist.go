// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints. Each user's wishlist is
// served by a cached reconciler, so membership checks need no query.
type WishlistHandler struct {
	reconcilers *wishlist.ReconcilerSet
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(reconcilers *wishlist.ReconcilerSet) *WishlistHandler {
	return &WishlistHandler{reconcilers: reconcilers}
}

// AddWishlistItemRequest represents an add-to-wishlist request
type AddWishlistItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// ListItems handles GET /api/v1/wishlist
func (h *WishlistHandler) ListItems(c *gin.Context) {
	r, err := h.reconcilerFor(c)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": r.Items()})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(c *gin.Context) {
	var req AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.reconcilerFor(c)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if err := r.Add(c.Request.Context(), req.ProductID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"items": r.Items()})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/:productId
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	r, err := h.reconcilerFor(c)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if err := r.Remove(c.Request.Context(), c.Param("productId")); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": r.Items()})
}

// Contains handles GET /api/v1/wishlist/items/:productId
func (h *WishlistHandler) Contains(c *gin.Context) {
	r, err := h.reconcilerFor(c)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_wishlist": r.Contains(c.Param("productId"))})
}

// Private helper methods

func (h *WishlistHandler) reconcilerFor(c *gin.Context) (*wishlist.Reconciler, error) {
	userID, _ := middleware.GetUserIDFromContext(c)
	return h.reconcilers.For(c.Request.Context(), userID)
}

func (h *WishlistHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wishlist.ErrSignInRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, wishlist.ErrAlreadyInWishlist):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wishlist.ErrNotInWishlist):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, product.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wishlist operation failed"})
	}
}
