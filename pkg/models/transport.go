package models

// AnalysisResponse is the JSON body returned when responseFormat is 1
type AnalysisResponse struct {
	Result            string `json:"result"`
	InputType         string `json:"input_type"`
	SystemMessageUsed string `json:"system_message_used"`
	ResponseFormat    string `json:"response_format"`
}

// NewAnalysisResponse builds the JSON view of a result
func NewAnalysisResponse(r *AnalysisResult) AnalysisResponse {
	return AnalysisResponse{
		Result:            r.ResultText,
		InputType:         string(r.InputKind),
		SystemMessageUsed: r.InstructionSource,
		ResponseFormat:    r.Format.String(),
	}
}

// ErrorResponse represents an error response.
// Message is a safe summary; causes are logged, never returned.
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// SystemMessageView describes one registered instruction
type SystemMessageView struct {
	Description string `json:"description"`
	Body        string `json:"body"`
}
