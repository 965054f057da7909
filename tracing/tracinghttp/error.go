// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracinghttp

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteErrorf provides printf-style functionality for writing a JSON error.  The response status code
// is set to code, and a JSON message of the form {"code": %d, "message": "%s"} is written as the body.
func WriteErrorf(response http.ResponseWriter, code int, format string, parameters ...interface{}) error {
	return WriteError(response, code, fmt.Sprintf(format, parameters...))
}

// WriteError writes a JSON message of the form {"code": %d, "message": "%s"} as the response.
func WriteError(response http.ResponseWriter, code int, message string) error {
	response.Header().Set("Content-Type", "application/json")
	response.Header().Set("X-Content-Type-Options", "nosniff")
	response.WriteHeader(code)

	return json.NewEncoder(response).Encode(struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{
		Code:    code,
		Message: message,
	})
}
