package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Clients pin
// to this; bump only with a coordinated client release.
const envelopeVersion = 1

// Envelope is the uniform response wrapper. Every JSON body the API emits,
// success or failure, is one of three shapes:
//
//	success:        {"v": 1, "success": true, "data": ...}
//	simple error:   {"v": 1, "success": false, "error": "..."}
//	detailed error: {"v": 1, "success": false, "code": "...", "message": "...", "details": ...}
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the envelope. Registered
// as a huma transformer so handlers return plain bodies.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code != "" {
			return &Envelope{
				V:       envelopeVersion,
				Success: false,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
		}, nil
	}

	if err, ok := v.(error); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
