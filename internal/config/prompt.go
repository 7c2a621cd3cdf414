package config

import (
	"regexp"
)

// Prompt template names used by the processor.
const (
	PromptText  = "text_system"
	PromptImage = "image_system"
)

// placeholderPattern matches {{, }} and {identifier}. Other braces, such as
// literal JSON examples in a template, are left alone.
var placeholderPattern = regexp.MustCompile(`\{\{|\}\}|\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Prompt returns the named template with {placeholder} values substituted from vars.
func (d *Document) Prompt(name string, vars map[string]string) (string, error) {
	v, ok := d.Get(SectionPrompts, name)
	if !ok {
		return "", &PromptLookupError{Name: name}
	}
	template, ok := v.(string)
	if !ok {
		return "", &PromptLookupError{Name: name}
	}

	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		switch match {
		case "{{":
			return "{"
		case "}}":
			return "}"
		}
		key := match[1 : len(match)-1]
		value, ok := vars[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return match
		}
		return value
	})

	if missing != "" {
		return "", &PromptSubstitutionError{Name: name, Placeholder: missing}
	}
	return out, nil
}
