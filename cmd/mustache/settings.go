package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mustache-engine/pkg/core/config"
	"mustache-engine/pkg/core/logging"
	"mustache-engine/pkg/datafile"
	"mustache-engine/pkg/metrics"
	"mustache-engine/pkg/mustache"
	"mustache-engine/pkg/templating"
)

// loadSettings resolves the configuration and builds the logger. Flags
// override whatever the file and the environment set.
func loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(rootConfigFile)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = rootLogLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = rootLogFormat
	}
	if flags.Changed("dir") {
		cfg.Templates.Directory = rootTemplateDir
	}
	if flags.Changed("ext") {
		cfg.Templates.Extension = rootExtension
	}
	if flags.Changed("content-type") {
		cfg.ContentType = rootContentType
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = rootMaxDepth
	}

	if err := config.ValidateStructure(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// stdout belongs to rendered output
	logger := logging.NewLoggerWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// engineOptions translates the configuration into engine options.
func engineOptions(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (templating.Options, error) {
	contentType, err := mustache.ParseContentType(cfg.ContentType)
	if err != nil {
		return templating.Options{}, err
	}

	ppConfigs := make([]templating.PostProcessorConfig, 0, len(cfg.PostProcessors))
	for _, pp := range cfg.PostProcessors {
		ppConfigs = append(ppConfigs, templating.PostProcessorConfig{
			Type:   templating.PostProcessorType(pp.Type),
			Params: pp.Params,
		})
	}
	postProcessors, err := templating.NewPostProcessors(ppConfigs)
	if err != nil {
		return templating.Options{}, err
	}

	return templating.Options{
		ContentType:       contentType,
		StartDelimiter:    cfg.Delimiters.Start,
		EndDelimiter:      cfg.Delimiters.End,
		MaxDepth:          cfg.MaxDepth,
		TemplateDir:       cfg.Templates.Directory,
		TemplateExtension: cfg.Templates.Extension,
		Filters:           templating.BuiltinFilters(),
		Functions: map[string]templating.GlobalFunc{
			"fail": fail,
		},
		Globals:         cfg.Globals,
		StandardLibrary: cfg.UseStandardLibrary(),
		LogTags:         cfg.LogTags,
		PostProcessors:  postProcessors,
		Logger:          logger,
		Metrics:         m,
	}, nil
}

// fail aborts rendering with its first argument as the message.
func fail(args ...interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("template evaluation failed")
	}
	return nil, fmt.Errorf("%v", args[0])
}

// newEngine compiles the configured templates.
func newEngine(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*templating.TemplateEngine, error) {
	opts, err := engineOptions(cfg, logger, m)
	if err != nil {
		return nil, err
	}

	logger.Info("Compiling templates",
		"directory", cfg.Templates.Directory,
		"inline", len(cfg.Templates.Inline))

	engine, err := templating.NewWithOptions(cfg.Templates.Inline, opts)
	if err != nil {
		return nil, describeTemplateError(err, templateSource(cfg))
	}
	return engine, nil
}

// openData opens the render data at location: a file path, an http(s) URL
// or "-" for JSON on stdin. An empty location means no data.
func openData(location string, logger *slog.Logger) (datafile.Source, error) {
	source, err := datafile.Open(location, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return source, nil
}

// templateSource looks up the source of a template by name, inline
// templates first. Unknown names yield "".
func templateSource(cfg *config.Config) func(name string) string {
	return func(name string) string {
		if src, ok := cfg.Templates.Inline[name]; ok {
			return src
		}
		if cfg.Templates.Directory == "" {
			return ""
		}
		ext := strings.TrimPrefix(cfg.Templates.Extension, ".")
		if ext != "" {
			ext = "." + ext
		}
		data, err := os.ReadFile(filepath.Join(cfg.Templates.Directory, filepath.FromSlash(name)+ext))
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// describeTemplateError replaces compilation and render errors with the
// multi-line report of templating.FormatRenderError. Other errors are
// returned unchanged.
func describeTemplateError(err error, source func(name string) string) error {
	var compileErr *templating.CompilationError
	if errors.As(err, &compileErr) {
		return errors.New(templating.FormatRenderError(err, compileErr.TemplateName, source(compileErr.TemplateName)))
	}

	var renderErr *templating.RenderError
	if errors.As(err, &renderErr) {
		return errors.New(templating.FormatRenderError(err, renderErr.TemplateName, source(renderErr.TemplateName)))
	}

	return err
}
