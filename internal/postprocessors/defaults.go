package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/config/values"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/postprocessors/sections"
	"github.com/custodia-labs/lexrag/internal/postprocessors/splitter"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(sections.Name, buildSections)
	r.Register(splitter.Name, buildSplitter)
}

// BuildPipeline builds the processors named in cfg, in order.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, fmt.Errorf("%w: empty processor pipeline", domain.ErrConfig)
	}
	p := NewPipeline()
	for _, name := range cfg.Processors {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

func buildSections(_ map[string]any) (driven.PostProcessor, error) {
	return sections.New(), nil
}

// buildSplitter creates a splitter processor from generic config.
// Supported config keys:
//   - max_chars (int): Maximum runes per chunk (default: 2000)
//   - overlap (int): Overlap between hard-split windows (default: 200)
func buildSplitter(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []splitter.Option

	if cfg != nil {
		if size, ok := intSetting(cfg, "max_chars"); ok && size > 0 {
			opts = append(opts, splitter.WithMaxChars(size))
		}
		if overlap, ok := intSetting(cfg, "overlap"); ok {
			opts = append(opts, splitter.WithOverlap(overlap))
		}
	}

	return splitter.New(opts...), nil
}

// intSetting reads an integer setting. TOML and JSON decode numbers as
// int64 or float64, so every numeric form is accepted.
func intSetting(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}
	return values.Int(val), true
}
