package llm

// Turn is one entry of the conversation history sent with each request.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// FunctionCall is a structured operation request proposed by the model.
// It is untrusted output: the dispatcher validates it against the schema
// registry before anything runs.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// Reply is the model's answer to one user message: optional natural-language
// text plus zero or more proposed function calls, in model order.
type Reply struct {
	Text  string
	Calls []FunctionCall
}
