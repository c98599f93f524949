package agents

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Info is the listing entry for one agent profile.
type Info struct {
	// ID is the profile's identifier (the file name without extension).
	ID string `json:"id"`

	// Name is the agent's display name.
	Name string `json:"name"`

	// Description is a one-line summary of the agent.
	Description string `json:"description,omitempty"`

	// Model is the model the agent prefers, if any.
	Model string `json:"model,omitempty"`
}

// Profile is one complete agent profile.
type Profile struct {
	// ID is the profile's identifier.
	ID string `json:"id"`

	// Name is the agent's display name.
	Name string `json:"name"`

	// Description is a one-line summary of the agent.
	Description string `json:"description,omitempty"`

	// Model is the model the agent prefers, if any.
	Model string `json:"model,omitempty"`

	// Prompt is the agent's system prompt (the markdown body).
	Prompt string `json:"prompt"`
}

// Info returns the profile's listing entry.
func (p *Profile) Info() Info {
	return Info{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Model:       p.Model,
	}
}

// frontMatter is the YAML header of a profile file.
type frontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Model       string `yaml:"model,omitempty"`
}

// frontMatterDelimiter separates the YAML header from the prompt body.
const frontMatterDelimiter = "---"

// ParseProfile parses a profile file. A file without front matter is
// valid: the whole content becomes the prompt and the name defaults to
// the id.
func ParseProfile(id string, data []byte) (*Profile, error) {
	p := &Profile{
		ID:   id,
		Name: id,
	}

	content := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))

	if strings.HasPrefix(content, frontMatterDelimiter+"\n") {
		rest := content[len(frontMatterDelimiter)+1:]
		end := strings.Index(rest, "\n"+frontMatterDelimiter)
		if end < 0 {
			return nil, fmt.Errorf("profile %q: unterminated front matter", id)
		}

		var fm frontMatter
		if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
			return nil, fmt.Errorf("profile %q: invalid front matter: %w", id, err)
		}

		if fm.Name != "" {
			p.Name = fm.Name
		}
		p.Description = fm.Description
		p.Model = fm.Model

		body := rest[end+len(frontMatterDelimiter)+1:]
		body = strings.TrimPrefix(body, "\n")
		content = body
	}

	p.Prompt = strings.TrimSpace(content)
	return p, nil
}

// Render renders the profile back into its file form: front matter
// followed by the prompt body.
func (p *Profile) Render() ([]byte, error) {
	fm := frontMatter{
		Name:        p.Name,
		Description: p.Description,
		Model:       p.Model,
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("profile %q: failed to marshal front matter: %w", p.ID, err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelimiter + "\n")
	buf.Write(header)
	buf.WriteString(frontMatterDelimiter + "\n\n")
	buf.WriteString(strings.TrimSpace(p.Prompt))
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// NotFoundError indicates the requested agent profile does not exist.
type NotFoundError struct {
	// ID is the profile id that was not found.
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found", e.ID)
}
