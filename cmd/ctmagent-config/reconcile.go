package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sardine-ai/ctmagent-config/client"
	"github.com/sardine-ai/ctmagent-config/source"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newReconcileCommand(o *globalOptions) *cobra.Command {
	var (
		kind     string
		opts     source.Options
		interval time.Duration
		check    bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Keep the agent in line with a desired-state repository",
		Long: `Reconcile fetches a desired-state document from a file, an HTTP endpoint,
a git repository, an S3 bucket or a GCS bucket and applies it.

Without --interval it runs once and prints the result. With --interval it
keeps running until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := source.NewRepository(kind, opts)
			if err != nil {
				return err
			}
			m, err := o.manager()
			if err != nil {
				return err
			}

			if interval <= 0 {
				c := &client.Client{Repository: repo, Manager: m, CheckMode: check}
				result, err := c.Reconcile()
				if err != nil {
					return err
				}
				return printValue(cmd.OutOrStdout(), format, result)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			var copts []client.Option
			if check {
				copts = append(copts, client.WithCheckMode())
			}
			c, err := client.NewClient(ctx, repo, m, interval, copts...)
			if err != nil {
				logrus.WithError(err).Warn("first reconcile failed, retrying on the next tick")
			}
			<-ctx.Done()
			c.Close()
			logrus.Info("reconcile stopped")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&kind, "source", "fs", "repository type: fs, http, git, s3 or gcs")
	flags.StringVar(&opts.Name, "name", "", "repository name used in logs")
	flags.StringVar(&opts.Path, "path", "", "file path, path in the git repository, or object name")
	flags.StringVar(&opts.URL, "url", "", "HTTP or git URL")
	flags.StringVar(&opts.Branch, "branch", "", "git branch")
	flags.StringVar(&opts.Bucket, "bucket", "", "S3 or GCS bucket")
	flags.StringVar(&opts.Region, "region", "", "S3 region")
	flags.StringVar(&opts.Endpoint, "endpoint", "", "S3 compatible endpoint")
	flags.StringVar(&opts.AccessKeyID, "access-key-id", os.Getenv("CTMAGENT_S3_ACCESS_KEY_ID"), "S3 access key, the default credential chain when empty")
	flags.StringVar(&opts.SecretAccessKey, "secret-access-key", os.Getenv("CTMAGENT_S3_SECRET_ACCESS_KEY"), "S3 secret key")
	flags.StringVar(&opts.APIKey, "api-key", os.Getenv("CTMAGENT_SOURCE_API_KEY"), "X-API-Key for the http source")
	flags.StringVar(&opts.Username, "username", "", "git username")
	flags.StringVar(&opts.Password, "password", os.Getenv("CTMAGENT_SOURCE_PASSWORD"), "git password or token")
	flags.DurationVar(&interval, "interval", 0, "reconcile interval, run once when zero")
	flags.BoolVar(&check, "check", false, "report what would change without writing")
	flags.StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
