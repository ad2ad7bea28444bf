package main

import (
	"errors"
	"fmt"
	"os"

	gerrors "github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/org-reshape/pkg/configuration"
	"github.com/iota-uz/org-reshape/pkg/logging"
	"github.com/iota-uz/org-reshape/pkg/reshape"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

// cliContext carries what every subcommand shares once flags are parsed.
type cliContext struct {
	envFiles []string
	conf     *configuration.Configuration
}

func (cc *cliContext) logger() *logrus.Logger {
	if cc.conf == nil || cc.conf.Logger() == nil {
		return logging.Discard()
	}
	return cc.conf.Logger()
}

func newRootCmd() *cobra.Command {
	cc := &cliContext{envFiles: []string{".env", ".env.local"}}

	cmd := &cobra.Command{
		Use:           "org-reshape",
		Short:         "Reshape person/organization exports from wide to long format",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := configuration.Load(cc.envFiles)
			if err != nil {
				return withCode(exitUsage, gerrors.Wrap(err, "configuration error"))
			}
			// stdout carries CSV and JSON summaries
			conf.SetLogOutput(cmd.ErrOrStderr())
			cc.conf = conf
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cc.conf != nil {
				cc.conf.Unload()
			}
		},
	}

	cmd.AddCommand(newReshapeCmd(cc))
	cmd.AddCommand(newPreviewCmd(cc))
	cmd.AddCommand(newServeCmd(cc))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(code)
	}
}

func errorMessage(err error) string {
	var se *reshape.SchemaError
	var ie *tabular.IOError
	if errors.As(err, &se) || errors.As(err, &ie) {
		return reshape.UserMessage(err)
	}
	return err.Error()
}
