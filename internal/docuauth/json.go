package docuauth

import (
	"encoding/json"
	"io"
)

// decodeJSON reads the full body and unmarshals it, tolerating an empty body
// (some error responses from the token endpoint come back with no payload).
func decodeJSON(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
