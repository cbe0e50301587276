// Command dashgen generates the Grafana dashboard and Prometheus rule files
// for unsplash-picker from Go builders.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/unsplash-picker/tools/dashgen/dashboards"
	"github.com/donaldgifford/unsplash-picker/tools/dashgen/rules"
	"github.com/donaldgifford/unsplash-picker/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by tools/dashgen. DO NOT EDIT.\n"

// Output paths relative to Config.OutputDir.
var (
	dashboardPath = filepath.Join("grafana", "data", "picker-overview.json")
	recordingPath = filepath.Join("prometheus", "picker-recording-rules.yaml")
	alertsPath    = filepath.Join("prometheus", "picker-alerts.yaml")
)

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// artifact is one generated file.
type artifact struct {
	path string
	data []byte
}

func run(cfg Config, validateOnly bool, out io.Writer) error {
	var (
		artifacts []artifact
		results   []validate.Result
	)

	if cfg.DashboardEnabled {
		a, res, err := dashboardArtifact()
		if err != nil {
			return err
		}
		artifacts = append(artifacts, a)
		results = append(results, res)
	}

	if cfg.RulesEnabled {
		for _, rf := range []struct {
			path string
			cr   rules.PrometheusRule
		}{
			{path: recordingPath, cr: rules.RecordingRules()},
			{path: alertsPath, cr: rules.AlertRules()},
		} {
			a, err := ruleArtifact(rf.path, rf.cr)
			if err != nil {
				return err
			}
			artifacts = append(artifacts, a)
			results = append(results, validate.Rules(rf.cr, KnownMetrics))
		}
	}

	var errs []error
	for _, res := range results {
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		errs = append(errs, res.Errors...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}

	if validateOnly {
		fmt.Fprintln(out, "validation passed")
		return nil
	}

	for _, a := range artifacts {
		path := filepath.Join(cfg.OutputDir, a.path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, a.data, 0o644); err != nil { //nolint:gosec // generated files are world-readable
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(out, "dashgen: wrote %s\n", path)
	}
	return nil
}

func dashboardArtifact() (artifact, validate.Result, error) {
	dash, err := dashboards.BuildOverview().Build()
	if err != nil {
		return artifact{}, validate.Result{}, fmt.Errorf("building overview dashboard: %w", err)
	}

	data, err := json.MarshalIndent(dash, "", "  ")
	if err != nil {
		return artifact{}, validate.Result{}, fmt.Errorf("marshaling overview dashboard: %w", err)
	}
	data = append(data, '\n')

	return artifact{path: dashboardPath, data: data}, validate.Dashboard(dash, KnownMetrics), nil
}

func ruleArtifact(path string, cr rules.PrometheusRule) (artifact, error) {
	data, err := yaml.Marshal(cr)
	if err != nil {
		return artifact{}, fmt.Errorf("marshaling %s: %w", cr.Metadata.Name, err)
	}
	return artifact{path: path, data: append([]byte(generatedHeader), data...)}, nil
}
