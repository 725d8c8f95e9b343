package logger

import (
	"encoding/json"
	"net/http"
	"strings"
)

const Filtered = "[FILTERED]"

// sensitiveFields are field names that should be filtered from logs and audit details
var sensitiveFields = []string{
	"password",
	"password_hash",
	"passwordhash",
	"token",
	"access_token",
	"refresh_token",
	"authorization",
	"secret",
	"key",
	"api_key",
	"session",
	"credential",
	"auth",
}

func IsSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, sensitiveField := range sensitiveFields {
		if strings.Contains(lower, sensitiveField) {
			return true
		}
	}
	return false
}

// RedactHeaders masks sensitive headers and flattens multi-value headers.
func RedactHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if IsSensitive(name) {
			filtered[name] = Filtered
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

// RedactBody filters sensitive fields out of a JSON body. Non-JSON bodies are returned as is
// unless they mention a sensitive field name.
func RedactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var jsonData interface{}
	if err := json.Unmarshal(body, &jsonData); err != nil {
		bodyStr := string(body)
		if IsSensitive(bodyStr) {
			return "[FILTERED - Contains sensitive data]"
		}
		return bodyStr
	}

	filteredBytes, err := json.Marshal(Redact(jsonData))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}

	return string(filteredBytes)
}

// Redact recursively replaces the values of sensitive keys in decoded JSON-like data.
func Redact(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if IsSensitive(key) {
				filtered[key] = Filtered
			} else {
				filtered[key] = Redact(value)
			}
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = Redact(item)
		}
		return filtered
	default:
		return v
	}
}
