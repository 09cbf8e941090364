// Command restbq fetches JSON from REST APIs and replaces BigQuery tables with it.
package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"go.nownabe.dev/restbq"
)

const longDescription = `Fetch JSON from REST APIs and replace BigQuery tables with it.

Variants:
  single  countries from restcountries.com into $BQ_TABLE_ID
  multi   products and carts from fakestoreapi.com into tables of the same names

Destination is read from GCP_PROJECT_ID and BQ_DATASET_ID. Variables can also
be placed in .env files; variables of the process take precedence.`

type options struct {
	variant  string
	envFiles []string
	logLevel string
	pretty   bool
}

func main() {
	if err := newCommand(os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newCommand(logOut io.Writer) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:          "restbq",
		Short:        "Load REST API responses into BigQuery",
		Long:         longDescription,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			variant, err := restbq.ParseVariant(o.variant)
			if err != nil {
				return err
			}

			logger, err := restbq.NewLogger(logOut, o.logLevel, o.pretty)
			if err != nil {
				return err
			}

			run(cmd.Context(), logger, variant, o.envFiles)

			return nil
		},
	}

	cmd.Flags().StringVar(&o.variant, "variant", string(restbq.VariantSingle), "source set: single or multi")
	cmd.Flags().StringArrayVar(&o.envFiles, "env-file", nil, "path to a .env file (repeatable)")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "info", "log level")
	cmd.Flags().BoolVar(&o.pretty, "pretty", false, "print human friendly logs")

	return cmd
}

// run logs every failure and returns normally; failed sources are not reflected in the exit code.
func run(ctx context.Context, logger zerolog.Logger, variant restbq.Variant, envFiles []string) {
	env, err := restbq.ReadEnv(envFiles...)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read environment")
		return
	}

	cfg, err := restbq.ConfigFromEnv(env, variant)
	if err != nil {
		var missing *restbq.MissingEnvError
		if xerrors.As(err, &missing) {
			logger.Error().Strs("missing", missing.Names).Msg(err.Error())
			return
		}
		logger.Error().Err(err).Msg("invalid configuration")
		return
	}

	p, err := restbq.New(ctx, cfg, restbq.WithLogger(logger))
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize pipeline")
		return
	}
	defer p.Close()

	p.Run(ctx, restbq.Sources(cfg))
}
