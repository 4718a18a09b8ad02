package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.Use(middleware.Recover())

	e.GET("/health", h.Health)
	e.POST("/feeds", h.SubscribeFeed)
	e.GET("/feeds", h.ListFeeds)
	e.DELETE("/feeds/:id", h.UnsubscribeFeed)
	e.GET("/articles", h.ListArticles)
	e.GET("/articles/:id", h.GetArticle)
	e.POST("/articles/:id/read", h.MarkArticleRead)
}
