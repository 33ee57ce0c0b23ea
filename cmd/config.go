package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/samba-sim/samba-sim/sim"
	"github.com/samba-sim/samba-sim/sim/batch"
)

// Environment variables supplying batch defaults.
const (
	EnvSeed    = "SAMBA_SEED"
	EnvWorkers = "SAMBA_WORKERS"
	EnvOutput  = "SAMBA_OUTPUT"
)

// BatchConfig is the batch configuration file.
// Every field must be listed to satisfy KnownFields(true) strict parsing.
type BatchConfig struct {
	Budgets    []int             `yaml:"budgets" validate:"required,min=1,dive,gt=0"`
	Iterations int               `yaml:"iterations" validate:"gte=1"`
	Epsilon    float64           `yaml:"epsilon" validate:"gte=0,lte=1"`
	Tau        float64           `yaml:"tau" validate:"ne=0"`
	Seed       int64             `yaml:"seed"`
	Workers    int               `yaml:"workers" validate:"gte=1"`
	Output     string            `yaml:"output" validate:"required"`
	Algorithms []string          `yaml:"algorithms" validate:"required,min=1,dive,algorithm"`
	Datasets   map[string]string `yaml:"datasets" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

// DefaultBatchConfig returns the built-in defaults.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Budgets:    []int{1000},
		Iterations: 20,
		Epsilon:    0.1,
		Tau:        0.1,
		Seed:       42,
		Workers:    runtime.NumCPU(),
		Output:     "output",
		Algorithms: sim.AlgorithmNames(),
		Datasets:   map[string]string{},
	}
}

// loadEnvFile loads path into the process environment without overriding
// variables already set. A missing default .env file is not an error.
func loadEnvFile(path string, required bool) error {
	err := godotenv.Load(path)
	if err != nil && !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// applyEnv overlays the SAMBA_* environment defaults onto cfg.
func applyEnv(cfg *BatchConfig, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Seed = seed
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = workers
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		cfg.Output = v
	}
	return nil
}

// loadBatchConfig decodes the YAML file at path over cfg. Fields absent from
// the file keep their current values. Unknown fields are errors.
func loadBatchConfig(path string, cfg *BatchConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading batch config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parsing batch config %s: %w", path, err)
	}
	return nil
}

// newValidator returns a validator aware of the algorithm catalog.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
		return sim.IsValidAlgorithm(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("registering algorithm validation: %v", err))
	}
	return v
}

// validateBatchConfig checks field ranges and the algorithm names.
func validateBatchConfig(cfg BatchConfig) error {
	if err := newValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				if fe.Tag() == "algorithm" {
					msgs = append(msgs, fmt.Sprintf("%s: %q: %v", fe.Namespace(), fe.Value(), sim.ErrAlgorithmNotFound))
					continue
				}
				msgs = append(msgs, fmt.Sprintf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid batch config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid batch config: %w", err)
	}
	return nil
}

// parseDatasetFlags parses repeated name=path values.
func parseDatasetFlags(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, path, ok := strings.Cut(v, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --dataset %q, want name=path", v)
		}
		out[name] = path
	}
	return out, nil
}

// batchConfig converts the file configuration to the runner's.
func (c BatchConfig) batchConfig() batch.Config {
	return batch.Config{
		Budgets:         append([]int(nil), c.Budgets...),
		Iterations:      c.Iterations,
		Algorithms:      append([]string(nil), c.Algorithms...),
		Hyperparameters: sim.Hyperparameters{Epsilon: c.Epsilon, Tau: c.Tau},
		Seed:            c.Seed,
	}
}

// datasetNames returns the dataset names in sorted order.
func (c BatchConfig) datasetNames() []string {
	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
