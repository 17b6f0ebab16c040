package response

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

var rgxCamelBoundary = regexp.MustCompile("([a-z0-9])([A-Z])")

type Response[T any] struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Error   T      `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta describes the page returned by list endpoints.
type Meta struct {
	Limit int `json:"limit"`
	Page  int `json:"page"`
	Count int `json:"count"`
}

func JSONCreatedResponse(w http.ResponseWriter, data any, message string) error {
	return JSONWithHeaders(w, success(http.StatusCreated, data, message), nil)
}

func JSONOkResponse(w http.ResponseWriter, data any, message string, headers http.Header) error {
	return JSONWithHeaders(w, success(http.StatusOK, data, message), headers)
}

func JSONPageResponse(w http.ResponseWriter, data any, message string, meta *Meta) error {
	res := success(http.StatusOK, data, message)
	res.Meta = meta
	return JSONWithHeaders(w, res, nil)
}

func JSONErrorResponse(w http.ResponseWriter, err any, message string, status int, headers http.Header) error {
	if message == "" {
		message = "Request failed"
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}
	response := &Response[any]{
		Status:  status,
		Success: false,
		Message: message,
		Error:   err,
	}

	return JSONWithHeaders(w, response, headers)
}

func success(status int, data any, message string) *Response[any] {
	if message == "" {
		message = "Request successful"
	}

	if convertedData, ok := data.(map[string]any); ok {
		data = ConvertKeysToSnakeCase(convertedData)
	}

	return &Response[any]{
		Status:  status,
		Success: true,
		Message: message,
		Data:    data,
	}
}

func JSONWithHeaders[T any](w http.ResponseWriter, response *Response[T], headers http.Header) error {
	js, err := json.MarshalIndent(response, "", "\t")
	if err != nil {
		return err
	}

	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.Status)

	w.Write(js)

	return nil
}

func toSnakeCase(s string) string {
	snake := rgxCamelBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(snake)
}

func ConvertKeysToSnakeCase(data map[string]any) map[string]any {
	snakeData := make(map[string]any, len(data))

	for key, value := range data {
		if nestedMap, ok := value.(map[string]any); ok {
			value = ConvertKeysToSnakeCase(nestedMap)
		}

		snakeData[toSnakeCase(key)] = value
	}
	return snakeData
}
