package handlers

import (
	"github.com/fatflowers/gymgate/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespActivity wraps the recent-activity listing in the standard envelope.
type RespActivity struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    activityResponse         `json:"data"`
}
