package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the settings and reports every problem at once.
func (s *Settings) Validate() error {
	var result *multierror.Error

	switch s.Report.Excluded {
	case "skip", "hoist":
	default:
		result = multierror.Append(result, fmt.Errorf("report: invalid excluded mode %q: must be 'skip' or 'hoist'", s.Report.Excluded))
	}

	switch s.Post.Units {
	case "metric", "inch":
	default:
		result = multierror.Append(result, fmt.Errorf("post: invalid units %q: must be 'metric' or 'inch'", s.Post.Units))
	}
	if !strings.HasPrefix(s.Post.Extension, ".") {
		result = multierror.Append(result, fmt.Errorf("post: extension %q must start with '.'", s.Post.Extension))
	}

	switch s.Batch.Overwrite {
	case "always", "never":
	default:
		result = multierror.Append(result, fmt.Errorf("batch: invalid overwrite policy %q: must be 'always' or 'never'", s.Batch.Overwrite))
	}
	for name, targets := range s.Batch.Profiles {
		if len(targets) == 0 {
			result = multierror.Append(result, fmt.Errorf("profile %q: at least one target is required", name))
		}
		for _, t := range targets {
			if t.Extension == "" {
				result = multierror.Append(result, fmt.Errorf("profile %q, target %q: extension is required", name, t.Postprocessor))
			}
		}
	}

	result = multierror.Append(result, s.Engine.validate()...)
	return result.ErrorOrNil()
}

func (e *Engine) validate() []error {
	var errs []error
	switch e.Kind {
	case "":
	case EngineSocketIO:
		if e.SocketIO == nil {
			return []error{fmt.Errorf("engine %q: missing configuration", e.Kind)}
		}
		u, err := url.Parse(e.SocketIO.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("engine \"socketio\": invalid url %q", e.SocketIO.URL))
		}
		if e.SocketIO.Timeout < 0 {
			errs = append(errs, fmt.Errorf("engine \"socketio\": timeout must not be negative"))
		}
	case EngineCommand:
		if e.Command == nil || strings.TrimSpace(e.Command.Command) == "" {
			errs = append(errs, fmt.Errorf("engine \"command\": command is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown engine kind %q: must be %q or %q", e.Kind, EngineSocketIO, EngineCommand))
	}
	return errs
}
