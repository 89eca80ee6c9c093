package dto

// CallableRequest is the envelope callable clients wrap their payload in
type CallableRequest[T any] struct {
	Data T `json:"data"`
}

// CallableResponse is the success envelope returned to callable clients
type CallableResponse[T any] struct {
	Result T `json:"result"`
}

func NewCallableResponse[T any](result T) CallableResponse[T] {
	return CallableResponse[T]{Result: result}
}
