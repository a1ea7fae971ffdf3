package handler

import (
	"net/http"

	"github.com/VidyaQuest-Labs/portal/internal/constants"
	"github.com/VidyaQuest-Labs/portal/internal/dto"
	"github.com/VidyaQuest-Labs/portal/internal/repository"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// TodoHandler serves the ephemeral per-user task list. Items live in
// process memory only and do not survive a restart.
type TodoHandler struct {
	todos *repository.TodoRepository
}

func NewTodoHandler(todos *repository.TodoRepository) *TodoHandler {
	return &TodoHandler{todos: todos}
}

func (h *TodoHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("userId is required", ""))
		return
	}

	c.JSON(http.StatusOK, h.todos.ListByUser(userID))
}

func (h *TodoHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CreateTodo")

	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for todo creation").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("text and userId are required", err.Error()))
		return
	}

	todo := h.todos.Add(req.Text, req.UserID)

	logger.DebugWithContext(ctx, "Todo created").
		String("todo_id", todo.ID).
		Log()

	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateTodo")

	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for todo update").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("id, done and userId are required", err.Error()))
		return
	}

	todo, ok := h.todos.SetDone(req.ID, req.UserID, *req.Done)
	if !ok {
		c.JSON(http.StatusNotFound, constants.BuildErrorResponse("Todo not found", ""))
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "DeleteTodo")

	var req dto.DeleteTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for todo deletion").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("id and userId are required", err.Error()))
		return
	}

	if !h.todos.Remove(req.ID, req.UserID) {
		c.JSON(http.StatusNotFound, constants.BuildErrorResponse("Todo not found", ""))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Todo deleted"))
}
