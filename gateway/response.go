package gateway

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Response is a successful (2xx) backend answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Get picks a single value out of the body using a gjson path.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}
