package domain

import "strings"

// AskResult is the Answer Service reply to a question.
type AskResult struct {
	Found   bool     `json:"found"`
	Answer  string   `json:"answer,omitempty"`
	Message string   `json:"message,omitempty"`
	Options []string `json:"options,omitempty"`
}

// HandleRequest resolves an open disambiguation on the Answer Service.
// UserAnswer is only sent with OptionProvideAnswer and ConfirmWeb only with OptionSearchWeb.
type HandleRequest struct {
	Question   string  `json:"question"`
	Option     Option  `json:"option"`
	UserAnswer *string `json:"userAnswer,omitempty"`
	ConfirmWeb *bool   `json:"confirmWeb,omitempty"`
}

// HandleResult is the Answer Service reply to a HandleRequest.
type HandleResult struct {
	Success bool   `json:"success,omitempty"`
	Answer  string `json:"answer,omitempty"`
	Message string `json:"message,omitempty"`
	Preview string `json:"preview,omitempty"`
}

// ProvideAnswer builds the request that saves a user supplied answer.
func ProvideAnswer(question, answer string) HandleRequest {
	return HandleRequest{Question: question, Option: OptionProvideAnswer, UserAnswer: &answer}
}

// SearchWeb builds the request that asks for a web preview.
func SearchWeb(question string) HandleRequest {
	return HandleRequest{Question: question, Option: OptionSearchWeb}
}

// ConfirmWeb builds the request that accepts or declines a web preview.
func ConfirmWeb(question string, accept bool) HandleRequest {
	return HandleRequest{Question: question, Option: OptionSearchWeb, ConfirmWeb: &accept}
}

// NormalizeQuestion folds case and whitespace so equivalent questions share
// one cache or knowledge-base key.
func NormalizeQuestion(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
