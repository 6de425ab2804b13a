package dispatch

import "github.com/Pbash-js/Pai/internal/llm"

// Status classifies a function-call result.
type Status string

const (
	StatusOK    Status = "success"
	StatusError Status = "error"
)

// Result is the outcome of one function call, with a message suitable for
// showing to the user.
type Result struct {
	Status  Status
	Message string
}

// Outcome pairs a call with its result, in the order the calls were dispatched.
type Outcome struct {
	Call   llm.FunctionCall
	Result Result
}

func (r Result) OK() bool {
	return r.Status == StatusOK
}

func ok(message string) Result {
	return Result{Status: StatusOK, Message: message}
}

func errResult(message string) Result {
	return Result{Status: StatusError, Message: message}
}
