package formstate

import "github.com/goliatone/go-jobform/pkg/model"

// Summary returns the payload data with file contents replaced by their
// name, content type and size, suitable for display or JSON output.
func (p Payload) Summary() map[string]any {
	out := make(map[string]any, len(p.Data))
	for name, value := range p.Data {
		if file, ok := value.(model.File); ok {
			out[name] = map[string]any{"name": file.Name, "contentType": file.ContentType, "size": file.Size()}
			continue
		}
		out[name] = value
	}
	return out
}
