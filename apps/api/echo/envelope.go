package echoapi

// Responses of the /api routes. Clients tell an empty result from a failure by Success alone.
type (
	successResponse struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data"`
		Message string      `json:"message"`
	}

	failureResponse struct {
		Success bool              `json:"success"`
		Data    []interface{}     `json:"data"`
		Message string            `json:"message"`
		Error   *string           `json:"error"`
		Errors  map[string]string `json:"errors,omitempty"`
	}
)

func success(data interface{}, msg string) successResponse {
	return successResponse{Success: true, Data: data, Message: msg}
}

// failure hides err unless debug is set.
func failure(msg string, err error, debug bool) failureResponse {
	resp := failureResponse{Data: []interface{}{}, Message: msg}
	if debug && err != nil {
		detail := err.Error()
		resp.Error = &detail
	}
	return resp
}
