package restbq

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/xerrors"
)

// Variant selects the built-in source set.
type Variant string

// Variants.
const (
	VariantSingle Variant = "single"
	VariantMulti  Variant = "multi"
)

// ParseVariant parses a variant name.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(s)); v {
	case VariantSingle, VariantMulti:
		return v, nil
	}
	return "", xerrors.Errorf("unknown variant %q (want %q or %q)", s, VariantSingle, VariantMulti)
}

// Environment variable names.
const (
	EnvProject       = "GCP_PROJECT_ID"
	EnvDataset       = "BQ_DATASET_ID"
	EnvTable         = "BQ_TABLE_ID"
	EnvArchiveBucket = "RAW_ARCHIVE_BUCKET"
	EnvSlackToken    = "SLACK_TOKEN"
	EnvSlackChannel  = "SLACK_CHANNEL"
)

// Config holds identifiers resolved from the environment.
type Config struct {
	Variant Variant

	// Project specifies GCP project name of destination BigQuery tables.
	Project string

	// Dataset specifies BigQuery dataset ID of destination tables.
	Dataset string

	// Table is the destination of the single-table variant.
	Table string

	// ArchiveBucket enables archiving raw payloads to Cloud Storage.
	ArchiveBucket string

	SlackToken   string
	SlackChannel string
}

// MissingEnvError lists required environment variables that are unset or empty.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("required environment variables are not set: %s", strings.Join(e.Names, ", "))
}

// Env is a set of environment variables.
type Env map[string]string

// ReadEnv returns the process environment merged with the given .env files.
// Process variables take precedence, and earlier files win over later ones.
// Files that do not exist are skipped.
func ReadEnv(files ...string) (Env, error) {
	env := Env{}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	for _, file := range files {
		fileEnv, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, xerrors.Errorf("cannot read env file %q: %w", file, err)
		}

		for k, v := range fileEnv {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}

	return env, nil
}

// ConfigFromEnv builds Config for the variant. Every missing required variable
// is reported at once in a *MissingEnvError.
func ConfigFromEnv(env Env, variant Variant) (*Config, error) {
	cfg := &Config{
		Variant:       variant,
		Project:       env[EnvProject],
		Dataset:       env[EnvDataset],
		Table:         env[EnvTable],
		ArchiveBucket: env[EnvArchiveBucket],
		SlackToken:    env[EnvSlackToken],
		SlackChannel:  env[EnvSlackChannel],
	}

	required := []string{EnvProject, EnvDataset}
	if variant == VariantSingle {
		required = append(required, EnvTable)
	}

	var missing []string
	for _, name := range required {
		if strings.TrimSpace(env[name]) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingEnvError{Names: missing}
	}

	return cfg, nil
}
