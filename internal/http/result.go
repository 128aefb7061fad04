package httpapi

import "agsavn-data/internal/models"

// Result is the envelope every JSON endpoint returns.
//   - code: 2000 on success, -1 on error
//   - type: "success" | "error"
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// Page is the result body of list endpoints.
type Page[T any] struct {
	Items      []T                      `json:"items"`
	Pagination models.BackendPagination `json:"pagination"`
}
