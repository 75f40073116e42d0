package renderer

import (
	"github.com/unrolled/render"
)

// New returns the JSON renderer shared by every handler.
func New(development bool) *render.Render {
	return render.New(render.Options{
		IndentJSON:    development,
		IsDevelopment: development,
		StreamingJSON: false,
	})
}
