package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type restockRequest struct {
	// Pointer distinguishes "absent" from zero; zero and negative amounts are
	// rejected by the service.
	Amount *int64 `json:"amount" validate:"required"`
}

type deleteResponse struct {
	Message string `json:"message"`
}
