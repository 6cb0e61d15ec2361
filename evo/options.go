package evo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Options collects the run-level settings that sit outside a Population's
// fluent builder: population size, the compatibility-distance starting
// point and target species count, the inbreeding and crossover rates,
// stagnation handling, and logging/execution knobs. It is the value a
// command-line runner or test harness loads from a file and then uses to
// configure a Population and an evaluator.
type Options struct {
	// Size is the number of genomes held in every generation.
	Size int `yaml:"size"`
	// DynamicDistance enables automatic compatibility-distance adjustment
	// towards SpeciesTarget after every generation.
	DynamicDistance bool `yaml:"dynamic_distance"`
	// Distance is the initial compatibility-distance threshold used by
	// speciation.
	Distance float64 `yaml:"distance"`
	// SpeciesTarget is the species count DynamicDistance adjusts towards.
	SpeciesTarget uint32 `yaml:"species_target"`
	// InbreedRate is the probability that a reproduction event draws its
	// second parent from a different niche than the first.
	InbreedRate float64 `yaml:"inbreed_rate"`
	// CrossoverRate is forwarded verbatim to Genome.Crossover.
	CrossoverRate float64 `yaml:"crossover_rate"`
	// TargetStagnation is the number of consecutive generations with an
	// unimproved top score that triggers the configured genocides.
	TargetStagnation uint32 `yaml:"target_stagnation"`
	// EvaluatorKind selects "sequential" or "parallel" fitness evaluation.
	EvaluatorKind string `yaml:"evaluator"`
	// NumGenerations bounds how many generations a runner should train for.
	NumGenerations int `yaml:"num_generations"`
	// NumRuns is how many independent trials a runner should execute.
	NumRuns int `yaml:"num_runs"`
	// Debug turns on per-generation progress logging.
	Debug bool `yaml:"debug"`
	// LogLevel is passed to InitLogger.
	LogLevel string `yaml:"log_level"`
}

// DefaultOptions returns the baseline configuration used when no file is
// supplied: a population of 100 with fixed compatibility distance, no
// stagnation handling, and sequential evaluation.
func DefaultOptions() *Options {
	return &Options{
		Size:             100,
		Distance:         3.0,
		SpeciesTarget:    15,
		InbreedRate:      0.05,
		CrossoverRate:    0.7,
		TargetStagnation: 0,
		EvaluatorKind:    "sequential",
		NumGenerations:   100,
		NumRuns:          1,
		LogLevel:         string(LogLevelInfo),
	}
}

// Validate rejects option combinations that would make a Population
// construct nonsensical behavior: a non-positive population size, a rate
// outside [0, 1], or a non-positive distance threshold.
func (o *Options) Validate() error {
	if o.Size <= 0 {
		return errors.Errorf("size must be positive, got %d", o.Size)
	}
	if o.Distance <= 0 {
		return errors.Errorf("distance must be positive, got %f", o.Distance)
	}
	if o.InbreedRate < 0 || o.InbreedRate > 1 {
		return errors.Errorf("inbreed_rate must be in [0, 1], got %f", o.InbreedRate)
	}
	if o.CrossoverRate < 0 || o.CrossoverRate > 1 {
		return errors.Errorf("crossover_rate must be in [0, 1], got %f", o.CrossoverRate)
	}
	switch o.EvaluatorKind {
	case "sequential", "parallel":
	default:
		return errors.Errorf("evaluator must be \"sequential\" or \"parallel\", got %q", o.EvaluatorKind)
	}
	if o.NumGenerations <= 0 {
		return errors.Errorf("num_generations must be positive, got %d", o.NumGenerations)
	}
	if o.NumRuns <= 0 {
		return errors.Errorf("num_runs must be positive, got %d", o.NumRuns)
	}
	return nil
}

// LoadYAMLOptions reads Options from a YAML document.
func LoadYAMLOptions(r io.Reader) (*Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(opts); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode YAML options")
	}
	return opts, nil
}

// LoadFlatOptions reads Options from the legacy flat "key value" text
// format, one setting per line, comments and blank lines ignored. Values
// are coerced to the target field's type with github.com/spf13/cast, so a
// numeric option may be written as "0.7" or "7e-1" interchangeably.
func LoadFlatOptions(r io.Reader) (*Options, error) {
	opts := DefaultOptions()
	var name, val string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, scanErr := fmt.Sscanf(line, "%s %s", &name, &val); scanErr != nil {
			continue
		}
		if err := assignFlatOption(opts, name, val); err != nil {
			return nil, errors.Wrapf(err, "failed to parse option [%s]", name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read flat options")
	}
	return opts, nil
}

func assignFlatOption(opts *Options, name, val string) error {
	switch name {
	case "size":
		n, err := cast.ToIntE(val)
		if err != nil {
			return err
		}
		opts.Size = n
	case "dynamic_distance":
		b, err := cast.ToBoolE(val)
		if err != nil {
			return err
		}
		opts.DynamicDistance = b
	case "distance":
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return err
		}
		opts.Distance = f
	case "species_target":
		n, err := cast.ToUint32E(val)
		if err != nil {
			return err
		}
		opts.SpeciesTarget = n
	case "inbreed_rate":
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return err
		}
		opts.InbreedRate = f
	case "crossover_rate":
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return err
		}
		opts.CrossoverRate = f
	case "target_stagnation":
		n, err := cast.ToUint32E(val)
		if err != nil {
			return err
		}
		opts.TargetStagnation = n
	case "evaluator":
		opts.EvaluatorKind = val
	case "num_generations":
		n, err := cast.ToIntE(val)
		if err != nil {
			return err
		}
		opts.NumGenerations = n
	case "num_runs":
		n, err := cast.ToIntE(val)
		if err != nil {
			return err
		}
		opts.NumRuns = n
	case "debug":
		b, err := cast.ToBoolE(val)
		if err != nil {
			return err
		}
		opts.Debug = b
	case "log_level":
		opts.LogLevel = val
	default:
		return errors.Errorf("unknown option name: %s", name)
	}
	return nil
}

// ReadOptionsFromFile dispatches to LoadYAMLOptions or LoadFlatOptions based
// on the file extension: ".yml"/".yaml" decode as YAML, anything else is
// treated as the flat format.
func ReadOptionsFromFile(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open options file: %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return LoadYAMLOptions(f)
	default:
		return LoadFlatOptions(f)
	}
}
