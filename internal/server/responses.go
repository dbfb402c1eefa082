package server

import "github.com/gin-gonic/gin"

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c *gin.Context, statusCode int, status string, data interface{}, message string, err error) {
	response := APIResponse{
		Status:  status,
		Message: message,
		Data:    data,
	}

	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(statusCode, response)
}

func success(c *gin.Context, statusCode int, data interface{}, message string) {
	respond(c, statusCode, "success", data, message, nil)
}

func fail(c *gin.Context, statusCode int, err error, message string) {
	respond(c, statusCode, "error", nil, message, err)
}
