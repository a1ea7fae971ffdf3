package router

import "github.com/gin-gonic/gin"

func (r *Router) contentRoutes(engine *gin.Engine) {
	engine.GET("/books", r.bookHandler.List)
	engine.POST("/chat", r.chatHandler.Chat)
	engine.POST("/explain", r.chatHandler.Explain)
}
