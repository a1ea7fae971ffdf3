package router

import "github.com/gin-gonic/gin"

func (r *Router) todoRoutes(engine *gin.Engine) {
	todos := engine.Group("/todos")
	{
		todos.GET("", r.todoHandler.List)
		todos.POST("", r.todoHandler.Create)
		todos.PUT("", r.todoHandler.Update)
		todos.DELETE("", r.todoHandler.Delete)
	}
}
