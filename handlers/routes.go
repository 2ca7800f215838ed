package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the import and collection endpoints on api.
func RegisterRoutes(api *gin.RouterGroup, imports *ImportHandler, collections *CollectionHandler) {
	// Upload -> preview -> confirm or discard
	api.POST("/uploads/:target", imports.Upload)
	api.GET("/uploads/:target", collections.ListUploads)
	api.GET("/imports/:id", imports.GetPreview)
	api.DELETE("/imports/:id", imports.Discard)
	api.POST("/imports/:id/confirm", imports.Confirm)
	api.GET("/imports/:id/source", imports.GetSource)

	api.GET("/collections/:target", collections.List)

	api.POST("/cache/invalidate", collections.InvalidateCache)
}
