package main

import (
	"errors"
	"fmt"

	"github.com/sardine-ai/ctmagent-config/manager"
	"github.com/sardine-ai/ctmagent-config/schema"
	"github.com/sardine-ai/ctmagent-config/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	store     string
	file      string
	agent     string
	verbose   bool
	logFormat string
}

func newRootCommand() *cobra.Command {
	o := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "ctmagent-config",
		Short: "Read and apply Control-M/Agent configuration",
		Long: `ctmagent-config reads and applies the configuration of a Control-M/Agent
installed on Windows. Settings live in the registry under
HKLM\SOFTWARE\BMC Software\Control-M/Agent.

Changing some settings only takes effect after the agent service restarts.
ctmagent-config never restarts the service; it lists those settings instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setupLogging(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.store, "store", "registry", "configuration store: registry, file or memory")
	flags.StringVar(&o.file, "file", "", "YAML image of the agent settings, for --store file")
	flags.StringVar(&o.agent, "agent", store.DefaultAgent, "agent instance name")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	flags.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(
		newReadCommand(o),
		newApplyCommand(o),
		newReconcileCommand(o),
		newServeCommand(o),
		newSchemaCommand(),
	)
	return rootCmd
}

func (o *globalOptions) setupLogging(cmd *cobra.Command) error {
	logrus.SetOutput(cmd.ErrOrStderr())
	switch o.logFormat {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", o.logFormat)
	}
	if o.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	return nil
}

func (o *globalOptions) openStore() (store.Store, error) {
	switch o.store {
	case "registry":
		st, err := store.NewRegistryStore(o.agent)
		if errors.Is(err, store.ErrUnsupported) {
			return nil, fmt.Errorf("%w: use --store file", err)
		}
		return st, err
	case "file":
		if o.file == "" {
			return nil, errors.New("--file is required with --store file")
		}
		return store.NewYAMLFileStore(o.file)
	case "memory":
		return store.NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown store %q", o.store)
	}
}

func (o *globalOptions) manager() (*manager.Manager, error) {
	st, err := o.openStore()
	if err != nil {
		return nil, err
	}
	logrus.WithField("store", st.Name()).Debug("store opened")
	return manager.New(schema.Agent(), st), nil
}
