package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(engine *gin.Engine) {
	users := engine.Group("/users")
	{
		// Sign-in exchange, no session yet
		users.POST("/create", r.userHandler.CreateUser)

		// Public read-only views
		users.GET("/leaderboard", r.userHandler.Leaderboard)
		users.GET("/minigames", r.userHandler.MiniGames)

		// Everything else rides on an active session token
		protected := users.Group("")
		protected.Use(r.sessionMw.RequireSession())
		{
			protected.GET("/profile", r.userHandler.GetProfile)
			protected.PUT("/profile", r.userHandler.UpdateProfile)
			protected.DELETE("/profile", r.userHandler.DeleteAccount)
			protected.PUT("/xp", r.userHandler.UpdateXP)
			protected.POST("/logout", r.userHandler.Logout)
		}
	}
}
