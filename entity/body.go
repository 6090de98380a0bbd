package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ObjectBody gibt das JSON-Objekt eines Request-Bodys zurück. Manche Clients schicken
// das Objekt doppelt kodiert als JSON-String; das wird hier einmal ausgepackt.
func ObjectBody(body []byte) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		body = bytes.TrimSpace([]byte(inner))
	}
	if len(body) == 0 || body[0] != '{' || !json.Valid(body) {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidPayload)
	}
	return body, nil
}
