package routes

import (
	"github.com/campusconnect/backend/internal/app/controllers"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Feed     *controllers.FeedController
	Message  *controllers.MessageController
	Director *controllers.DirectorController
	Bounty   *controllers.BountyController
	Health   *controllers.HealthController

	// Socket upgrades an authenticated request to the realtime gateway
	Socket gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter gin.HandlerFunc,
) {
	router.GET("/ping", h.Health.Ping)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", h.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	if authLimiter != nil {
		auth.Use(authLimiter)
	}
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/director/login", h.Auth.DirectorLogin)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/ws", h.Socket)

	users := authenticated.Group("/users")
	{
		users.GET("/me", h.User.GetProfile)
		users.PUT("/me", h.User.UpdateProfile)
		users.DELETE("/me", h.User.Deactivate)
		users.PUT("/me/info", h.User.UpdateUserInfo)
		users.POST("/me/skills", h.User.AddSkill)
		users.DELETE("/me/skills", h.User.RemoveSkill)
		users.POST("/me/projects", h.User.AddProject)
		users.DELETE("/me/projects/:projectId", h.User.RemoveProject)
		users.GET("/:id", h.User.GetUserByID)
	}

	alumni := authenticated.Group("/alumni")
	alumni.Use(authMiddleware.RoleRequired(string(models.RoleAlumni)))
	{
		alumni.GET("/me", h.User.GetAlumniDetails)
		alumni.PUT("/me", h.User.UpsertAlumniDetails)
	}

	feeds := authenticated.Group("/feeds")
	{
		feeds.POST("", h.Feed.CreateFeed)
		feeds.GET("", h.Feed.GetPosts)
		feeds.DELETE("/comments/:commentId", h.Feed.DeleteComment)
		feeds.POST("/comments/:commentId/reactions", h.Feed.ReactComment)
		feeds.GET("/:id", h.Feed.GetPost)
		feeds.PATCH("/:id", h.Feed.EditPost)
		feeds.DELETE("/:id", h.Feed.DeletePost)
		feeds.POST("/:id/reactions", h.Feed.React)
		feeds.GET("/:id/comments", h.Feed.ListComments)
		feeds.POST("/:id/comments", h.Feed.AddComment)
	}

	messages := authenticated.Group("/messages")
	{
		messages.GET("/:userId", h.Message.GetHistory)
		messages.POST("/:userId", h.Message.SendMessage)
	}
	authenticated.GET("/connections", h.Message.GetConnections)

	directors := authenticated.Group("/directors")
	directors.Use(authMiddleware.RoleRequired(string(models.RoleDirector)))
	{
		directors.POST("", h.Director.CreateDirector)
		directors.GET("/me", h.Director.GetDirector)
		directors.PUT("/me", h.Director.UpdateDirector)
		directors.GET("/connections", h.Director.GetConnections)
		directors.GET("/analytics", h.Director.GetAnalytics)
		directors.GET("/users", h.Director.GetCampusUsers)
		directors.POST("/remove-user", h.Director.RemoveUser)
		directors.POST("/campus-message", h.Director.SendCampusMessage)
	}

	bounties := authenticated.Group("/bounties")
	{
		bounties.POST("", h.Bounty.CreateBounty)
		bounties.GET("", h.Bounty.ListBounties)
		bounties.GET("/participations/me", h.Bounty.MyParticipations)
		bounties.GET("/:id", h.Bounty.GetBounty)
		bounties.DELETE("/:id", h.Bounty.DeleteBounty)
		bounties.POST("/:id/apply", h.Bounty.ApplyBounty)
		bounties.POST("/:id/close", h.Bounty.CloseBounty)
	}
}
