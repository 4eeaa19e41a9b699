package cvparse

import (
	"encoding/json"

	"techconnect-matcher/internal/models"
)

func jsonMarshal(v interface{}) (models.RawJSON, error) {
	b, err := json.Marshal(v)
	return models.RawJSON(b), err
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
