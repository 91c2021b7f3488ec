package config

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// CommandKind discriminates the three post-command shapes.
type CommandKind int

const (
	// KindSimple is a bare command string.
	KindSimple CommandKind = iota
	// KindComplex is a command with working directory, condition and
	// environment overlay.
	KindComplex
	// KindReplace is a regex substitution applied to a file.
	KindReplace
)

// PostCommand is one step of the pipeline run after a switch. Exactly one
// of the variant fields is populated, selected by Kind. The shape is
// discriminated at parse time: a YAML scalar is Simple, a mapping with an
// action key is Replace, any other mapping with a command key is Complex.
type PostCommand struct {
	Kind    CommandKind
	Simple  string
	Complex *ComplexCommand
	Replace *ReplaceAction
}

// ComplexCommand is a command step with optional execution controls.
type ComplexCommand struct {
	Name            string            `yaml:"name,omitempty"`
	Command         string            `yaml:"command"`
	WorkingDir      string            `yaml:"working_dir,omitempty"`
	Condition       string            `yaml:"condition,omitempty"`
	Environment     map[string]string `yaml:"environment,omitempty"`
	ContinueOnError bool              `yaml:"continue_on_error,omitempty"`
}

// ReplaceAction is a file-patching step: a global regex substitution over
// the file's full contents.
type ReplaceAction struct {
	Action          string `yaml:"action"`
	Name            string `yaml:"name,omitempty"`
	File            string `yaml:"file"`
	Pattern         string `yaml:"pattern"`
	Replacement     string `yaml:"replacement"`
	CreateIfMissing bool   `yaml:"create_if_missing,omitempty"`
	Condition       string `yaml:"condition,omitempty"`
	ContinueOnError bool   `yaml:"continue_on_error,omitempty"`
}

// UnmarshalYAML discriminates the variant by node shape.
func (p *PostCommand) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var cmd string
		if err := node.Decode(&cmd); err != nil {
			return err
		}
		if cmd == "" {
			return fmt.Errorf("post-command cannot be empty")
		}
		*p = PostCommand{Kind: KindSimple, Simple: cmd}
		return nil

	case yaml.MappingNode:
		if mappingHasKey(node, "action") {
			var replace ReplaceAction
			if err := node.Decode(&replace); err != nil {
				return err
			}
			*p = PostCommand{Kind: KindReplace, Replace: &replace}
			return nil
		}
		var cmd ComplexCommand
		if err := node.Decode(&cmd); err != nil {
			return err
		}
		*p = PostCommand{Kind: KindComplex, Complex: &cmd}
		return nil

	default:
		return fmt.Errorf("post-command must be a string or a mapping")
	}
}

// MarshalYAML writes the populated variant back in its original shape.
func (p PostCommand) MarshalYAML() (interface{}, error) {
	switch p.Kind {
	case KindSimple:
		return p.Simple, nil
	case KindComplex:
		return p.Complex, nil
	case KindReplace:
		return p.Replace, nil
	default:
		return nil, fmt.Errorf("unknown post-command kind %d", p.Kind)
	}
}

// Name returns the configured step name, or a short description derived
// from the step itself.
func (p PostCommand) Name() string {
	switch p.Kind {
	case KindSimple:
		return p.Simple
	case KindComplex:
		if p.Complex.Name != "" {
			return p.Complex.Name
		}
		return p.Complex.Command
	case KindReplace:
		if p.Replace.Name != "" {
			return p.Replace.Name
		}
		return fmt.Sprintf("replace %s", p.Replace.File)
	}
	return ""
}

func (p *PostCommand) validate() error {
	switch p.Kind {
	case KindSimple:
		if p.Simple == "" {
			return fmt.Errorf("command cannot be empty")
		}
	case KindComplex:
		if p.Complex == nil || p.Complex.Command == "" {
			return fmt.Errorf("command cannot be empty")
		}
	case KindReplace:
		if p.Replace == nil {
			return fmt.Errorf("replace action missing body")
		}
		if p.Replace.Action != "replace" {
			return fmt.Errorf("unknown action %q (only \"replace\" is supported)", p.Replace.Action)
		}
		if p.Replace.File == "" {
			return fmt.Errorf("replace action requires a file")
		}
		if _, err := regexp.Compile(p.Replace.Pattern); err != nil {
			return fmt.Errorf("invalid replace pattern: %w", err)
		}
	default:
		return fmt.Errorf("unknown post-command kind %d", p.Kind)
	}
	return nil
}

func mappingHasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
