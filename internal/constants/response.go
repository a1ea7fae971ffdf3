package constants

// Standard Response Field Keys
const (
	ResponseFieldSuccess = "success"
	ResponseFieldMessage = "message"
	ResponseFieldError   = "error"
	ResponseFieldUser    = "user"
	ResponseFieldDetails = "details"
)

// Response Format Functions
func BuildErrorResponse(message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldSuccess: false,
		ResponseFieldMessage: message,
	}

	if details != nil && details != "" {
		response[ResponseFieldDetails] = details
	}

	return response
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldMessage: message,
	}
}

func BuildUserResponse(user any) map[string]any {
	return map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldUser:    user,
	}
}
