package models

// Result codes used by the console API.
const (
	CodeSuccess      = "200"
	CodeBadRequest   = "400"
	CodeError        = "500"
	CodePutFailed    = "101"
	MessageSuccess   = "success"
	MessagePutFailed = "modify config failed"
)

// Result is the common envelope of every console API response.
type Result struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// SingleResult carries one value.
type SingleResult[T any] struct {
	Result
	Data T `json:"data"`
}

// PageResult carries a list. The configuration list is never paginated, so
// PageNum is always 1 and PageSize equals Total.
type PageResult[T any] struct {
	Result
	Data     []T `json:"data"`
	Total    int `json:"total"`
	PageNum  int `json:"pageNum"`
	PageSize int `json:"pageSize"`
}

// NewSingleSuccess wraps data into a successful SingleResult.
func NewSingleSuccess[T any](data T) SingleResult[T] {
	return SingleResult[T]{
		Result: Result{Code: CodeSuccess, Message: MessageSuccess, Success: true},
		Data:   data,
	}
}

// NewSingleFailure builds a failed SingleResult with the given code and message.
func NewSingleFailure[T any](code, message string) SingleResult[T] {
	return SingleResult[T]{Result: Result{Code: code, Message: message}}
}

// NewPageSuccess wraps a whole list into a PageResult.
func NewPageSuccess[T any](data []T) PageResult[T] {
	if data == nil {
		data = []T{}
	}
	return PageResult[T]{
		Result:   Result{Code: CodeSuccess, Message: MessageSuccess, Success: true},
		Data:     data,
		Total:    len(data),
		PageNum:  1,
		PageSize: len(data),
	}
}

// NewPageFailure builds a failed PageResult.
func NewPageFailure[T any](code, message string) PageResult[T] {
	return PageResult[T]{Result: Result{Code: code, Message: message}, Data: []T{}}
}
