package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/rogersnm/stitchbook/internal/model"
	"gopkg.in/yaml.v3"
)

// Parse reads YAML frontmatter and body from r into T.
func Parse[T any](r io.Reader) (T, string, error) {
	var meta T
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return meta, "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	return meta, strings.TrimSpace(string(body)), nil
}

// Marshal serializes meta as YAML frontmatter followed by body.
func Marshal[T any](meta T, body string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// MarshalPattern renders a pattern for editing: fields as frontmatter and
// the instructions as the markdown body. Images are not editable as text
// and are left out.
func MarshalPattern(p *model.Pattern) ([]byte, error) {
	return Marshal(p, p.Content)
}

// ParsePattern applies an edited document to orig and returns the result
// as a new record. The id, timestamps, images and unknown fields always
// come from orig.
func ParsePattern(r io.Reader, orig *model.Pattern) (*model.Pattern, error) {
	edited, body, err := Parse[model.Pattern](r)
	if err != nil {
		return nil, err
	}
	edited.Meta = orig.Meta
	edited.Content = body
	edited.Images = orig.Images
	edited.Extra = orig.Extra
	if err := edited.Validate(); err != nil {
		return nil, err
	}
	return &edited, nil
}
