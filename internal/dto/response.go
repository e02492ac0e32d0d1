package dto

// Response is the success form of the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// OKWithMessage wraps data and a human-readable message in a success envelope.
func OKWithMessage(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

// OKList wraps a list and its length in a success envelope.
func OKList(data interface{}, count int) Response {
	return Response{Success: true, Count: &count, Data: data}
}
