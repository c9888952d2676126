// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"medledger/internal/domain/auth"
	"medledger/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Reads are open to any authenticated user; destructive operations
// (delete, deletion mark) require the owner role.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	ownerOnly := middleware.RequireRole(auth.RoleOwner)

	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", ownerOnly, handler.Delete)
	group.POST("/:id/deletion-mark", ownerOnly, handler.SetDeletionMark)
}
