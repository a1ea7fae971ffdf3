package dto

type ChatRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ExplainRequest struct {
	Paragraph string `json:"paragraph" binding:"required,max=5000"`
}

type ExplainResponse struct {
	Success     bool   `json:"success"`
	Explanation string `json:"explanation"`
}
