package markup

import (
	"bytes"
	"encoding/json"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/twkang/hanmaru/model"
)

// manifestVersion identifies the manifest schema.
const manifestVersion = "1.0"

// Manifest describes the extracted resources of a converted document.
type Manifest struct {
	Version   string                      `json:"version"`
	Source    string                      `json:"source,omitempty"`
	Resources map[string]ManifestResource `json:"resources"`
}

// ManifestResource is one extracted asset.
type ManifestResource struct {
	Type   string `json:"type"`
	Src    string `json:"src"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Alt    string `json:"alt,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BuildManifest assembles the manifest for a document's resources. Image
// dimensions are decoded from the data when the format is supported;
// failures leave the dimensions unset rather than failing the manifest.
func BuildManifest(doc *model.Document, opts Options) *Manifest {
	m := &Manifest{
		Version:   manifestVersion,
		Source:    opts.Source,
		Resources: make(map[string]ManifestResource, len(doc.Resources)),
	}
	for _, res := range doc.Resources {
		mr := ManifestResource{
			Type:  resourceType(res),
			Src:   opts.assetDir() + "/" + res.Filename(),
			Alt:   res.Name,
			Error: res.Error,
		}
		if res.IsImage() && len(res.Data) > 0 {
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(res.Data)); err == nil {
				mr.Width = cfg.Width
				mr.Height = cfg.Height
			}
		}
		m.Resources[res.ID] = mr
	}
	return m
}

// Encode renders the manifest as indented JSON with a trailing newline.
func (m *Manifest) Encode() ([]byte, error) {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func resourceType(res *model.Resource) string {
	if strings.HasPrefix(res.ContentType, "image/") {
		return "image"
	}
	return "binary"
}
