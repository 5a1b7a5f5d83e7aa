package am

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/promptlab/promptlab/errors"
)

// ObjectivePlaceholder marks where the user's objective is inserted into the
// meta-prompt template.
const ObjectivePlaceholder = "{objective}"

// FallbackMetaPromptTemplate is used when no prompts file is available.
const FallbackMetaPromptTemplate = `You are an expert prompt engineer. Your task is to convert a simple objective into a detailed, effective system prompt that will guide an AI assistant to achieve that objective.

Guidelines for creating system prompts:
1. Be specific and clear about the role and behavior expected
2. Include relevant context and constraints
3. Specify the desired output format if applicable
4. Add examples or templates when helpful
5. Include error handling or edge case instructions
6. Make it actionable and measurable

The objective to convert into a system prompt is:
{objective}

Create a comprehensive system prompt that will effectively guide an AI to accomplish this objective. Return only the system prompt text, without any additional commentary or explanation.`

// MetaPromptParameters are the sampling options used for refinement calls
type MetaPromptParameters struct {
	Temperature   float64 `yaml:"temperature"`
	TopP          float64 `yaml:"top_p"`
	TopK          int     `yaml:"top_k"`
	RepeatPenalty float64 `yaml:"repeat_penalty"`
}

// DefaultMetaPromptParameters returns the refinement sampling defaults.
// Refinement runs cooler than testing so the generated prompt stays focused.
func DefaultMetaPromptParameters() MetaPromptParameters {
	return MetaPromptParameters{
		Temperature:   0.3,
		TopP:          0.9,
		TopK:          0,
		RepeatPenalty: 1.1,
	}
}

// Validate checks parameter ranges
func (p MetaPromptParameters) Validate() error {
	if p.Temperature < 0 || p.Temperature > 2 {
		return errors.Newf("temperature must be between 0.0 and 2.0, got %f", p.Temperature)
	}
	if p.TopP < 0 || p.TopP > 1 {
		return errors.Newf("top_p must be between 0.0 and 1.0, got %f", p.TopP)
	}
	if p.TopK < 0 {
		return errors.Newf("top_k must be non-negative, got %d", p.TopK)
	}
	if p.RepeatPenalty < 0 {
		return errors.Newf("repeat_penalty must be non-negative, got %f", p.RepeatPenalty)
	}
	return nil
}

// MetaPromptConfig is the template and parameters for prompt refinement
type MetaPromptConfig struct {
	Template   string               `yaml:"template"`
	Parameters MetaPromptParameters `yaml:"parameters"`
}

// Format inserts the objective into the template
func (c *MetaPromptConfig) Format(objective string) string {
	return strings.ReplaceAll(c.Template, ObjectivePlaceholder, objective)
}

// Validate checks the template and parameters
func (c *MetaPromptConfig) Validate() error {
	if c.Template == "" {
		return errors.New("meta-prompt template must be a non-empty string")
	}
	if !strings.Contains(c.Template, ObjectivePlaceholder) {
		return errors.Newf("meta-prompt template must contain %s placeholder", ObjectivePlaceholder)
	}
	return c.Parameters.Validate()
}

// promptsFile is the on-disk shape of prompts.yaml.
// Parameters decode through pointers so an explicit 0 is distinct from absent.
type promptsFile struct {
	MetaPrompt struct {
		Template   string `yaml:"template"`
		Parameters struct {
			Temperature   *float64 `yaml:"temperature"`
			TopP          *float64 `yaml:"top_p"`
			TopK          *int     `yaml:"top_k"`
			RepeatPenalty *float64 `yaml:"repeat_penalty"`
		} `yaml:"parameters"`
	} `yaml:"meta_prompt"`
}

// MetaPrompts loads and serves the meta-prompt configuration.
// Safe for concurrent use; Reload swaps the active config atomically.
type MetaPrompts struct {
	path string

	mu      sync.RWMutex
	current *MetaPromptConfig
}

// LoadMetaPrompts reads the prompts file at path. A missing or invalid file
// falls back to the built-in template rather than failing, so refinement
// always works. The returned error reports why the fallback was used.
func LoadMetaPrompts(path string) (*MetaPrompts, error) {
	mp := &MetaPrompts{path: path}
	err := mp.Reload()
	return mp, err
}

// Current returns the active meta-prompt configuration
func (mp *MetaPrompts) Current() *MetaPromptConfig {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.current
}

// Path returns the configured prompts file path
func (mp *MetaPrompts) Path() string {
	return mp.path
}

// Reload re-reads the prompts file and swaps the active configuration.
// On any failure the fallback template is installed and the error returned.
func (mp *MetaPrompts) Reload() error {
	config, err := mp.read()
	if err != nil {
		config = &MetaPromptConfig{
			Template:   FallbackMetaPromptTemplate,
			Parameters: DefaultMetaPromptParameters(),
		}
	}

	mp.mu.Lock()
	mp.current = config
	mp.mu.Unlock()

	return err
}

func (mp *MetaPrompts) read() (*MetaPromptConfig, error) {
	path := mp.path
	if path == "" {
		return nil, errors.New("no prompts file configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Try the backup the UI writes before saving edits
		backup := path + ".backup"
		if backupData, backupErr := os.ReadFile(backup); backupErr == nil {
			data = backupData
		} else {
			return nil, errors.Wrapf(err, "read prompts file %s", path)
		}
	}

	var file promptsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parse prompts file %s", path)
	}

	if file.MetaPrompt.Template == "" {
		return nil, errors.Newf("prompts file %s missing meta_prompt.template", path)
	}

	// Absent parameters get defaults; explicit values, including 0, are kept
	params := DefaultMetaPromptParameters()
	raw := file.MetaPrompt.Parameters
	if raw.Temperature != nil {
		params.Temperature = *raw.Temperature
	}
	if raw.TopP != nil {
		params.TopP = *raw.TopP
	}
	if raw.TopK != nil {
		params.TopK = *raw.TopK
	}
	if raw.RepeatPenalty != nil {
		params.RepeatPenalty = *raw.RepeatPenalty
	}

	config := &MetaPromptConfig{
		Template:   file.MetaPrompt.Template,
		Parameters: params,
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validate prompts file %s", path)
	}

	return config, nil
}
