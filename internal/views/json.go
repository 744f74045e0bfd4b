package views

import (
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"
)

var _ fiber.Views = JSONEngine{}

// JSONEngine writes the view name and its context as a JSON document. It
// backs API clients and lets tests inspect exactly what a page received.
type JSONEngine struct{}

type Rendered struct {
	View    string      `json:"view"`
	Context interface{} `json:"context"`
}

func NewJSON() JSONEngine {
	return JSONEngine{}
}

func (JSONEngine) Load() error {
	return nil
}

func (JSONEngine) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	return json.NewEncoder(w).Encode(Rendered{View: name, Context: binding})
}
