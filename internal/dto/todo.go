package dto

type CreateTodoRequest struct {
	Text   string `json:"text" binding:"required,max=500"`
	UserID string `json:"userId" binding:"required"`
}

type UpdateTodoRequest struct {
	ID     string `json:"id" binding:"required"`
	Done   *bool  `json:"done" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

type DeleteTodoRequest struct {
	ID     string `json:"id" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

type TodoResponse struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Done   bool   `json:"done"`
	UserID string `json:"userId"`
}
