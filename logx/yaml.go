package logx

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the shape original_source's log config YAML takes:
// a flat list of logger definitions, each naming its own level, pattern
// and appenders. Unlike config.LoadYAML (which flattens arbitrary
// nesting into dotted keys for the generic ConfigVar registry), this is
// a fixed schema specific to logging setup.
type fileConfig struct {
	Loggers []loggerConfig `yaml:"loggers"`
}

type loggerConfig struct {
	Name      string           `yaml:"name"`
	Level     string           `yaml:"level"`
	Pattern   string           `yaml:"pattern"`
	Appenders []appenderConfig `yaml:"appenders"`
}

type appenderConfig struct {
	Type string `yaml:"type"` // "console", "file", or "logrus"
	Path string `yaml:"path"` // for type: file
}

// LoadConfig reads a YAML logging configuration and applies it: each
// named logger (the empty name means the root logger) gets its level
// set and its listed appenders attached, in document order. A logger
// named in the file that isn't "root" is created via Named(Root(), name)
// if it wasn't already registered by the caller.
func LoadConfig(r io.Reader, registry map[string]*Logger) error {
	dec := yaml.NewDecoder(r)
	var fc fileConfig
	if err := dec.Decode(&fc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("logx: decode config: %w", err)
	}

	for _, lc := range fc.Loggers {
		var logger *Logger
		if lc.Name == "" || lc.Name == "root" {
			logger = Root()
		} else if existing, ok := registry[lc.Name]; ok {
			logger = existing
		} else {
			logger = Named(Root(), lc.Name)
			if registry != nil {
				registry[lc.Name] = logger
			}
		}

		if lc.Level != "" {
			lvl, ok := ParseLevel(lc.Level)
			if !ok {
				return fmt.Errorf("logx: logger %q: unknown level %q", lc.Name, lc.Level)
			}
			logger.SetLevel(lvl)
		}

		var pattern *Pattern
		if lc.Pattern != "" {
			p, err := CompilePattern(lc.Pattern)
			if err != nil {
				return fmt.Errorf("logx: logger %q: %w", lc.Name, err)
			}
			pattern = p
		}

		for _, ac := range lc.Appenders {
			appender, err := buildAppender(ac, pattern)
			if err != nil {
				return fmt.Errorf("logx: logger %q: %w", lc.Name, err)
			}
			logger.AddAppender(appender)
		}
	}
	return nil
}

func buildAppender(ac appenderConfig, pattern *Pattern) (Appender, error) {
	switch ac.Type {
	case "", "console":
		return NewConsoleAppender(pattern), nil
	case "file":
		if ac.Path == "" {
			return nil, fmt.Errorf("appender type file requires a path")
		}
		return NewFileAppender(ac.Path, pattern)
	case "logrus":
		return NewLogrusAppender(nil), nil
	default:
		return nil, fmt.Errorf("unknown appender type %q", ac.Type)
	}
}
