package httpdto

// Response is the envelope of every /v1/query reply.
type Response[T any] struct {
	Success   bool   `json:"success"`
	Operation string `json:"operation,omitempty"`
	Data      T      `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](operation string, data T) Response[T] {
	return Response[T]{
		Success:   true,
		Operation: operation,
		Data:      data,
	}
}

func NewErrorResponse(operation, err, code string) Response[any] {
	return Response[any]{
		Success:   false,
		Operation: operation,
		Error:     err,
		Code:      code,
	}
}
