package handler

import (
	"net/http"

	"github.com/VidyaQuest-Labs/portal/internal/service"
	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	bookService *service.BookService
}

func NewBookHandler(bookService *service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// List returns the static textbook catalog as a plain array.
func (h *BookHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.bookService.List())
}
