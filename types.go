package folio

import "github.com/eringen/folio/projects"

// apiResponse is the envelope every /api JSON body shares. It is built with
// okResponse or errorResponse, never by hand.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func okResponse(message string) apiResponse {
	return apiResponse{Success: true, Message: message}
}

func errorResponse(message string) apiResponse {
	return apiResponse{Success: false, Error: message}
}

type uploadResponse struct {
	apiResponse
	URL    string `json:"url"`
	Key    string `json:"key"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type projectsResponse struct {
	apiResponse
	Projects []projects.Project `json:"projects"`
}

type healthResponse struct {
	apiResponse
	Timestamp string `json:"timestamp"`
}

// limitResponse is the fixed body a rate limiter answers with. It has no
// success flag.
type limitResponse struct {
	Error string `json:"error"`
}
