package dataagent

// Usage tracks token consumption reported by the model for one response.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add returns the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}
