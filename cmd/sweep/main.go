// Command sweep runs an expiry job once, outside its schedule.
//
// Usage:
//
//	sweep list   --service shopping
//	sweep run plan-expiry --service shopping --config configs/shopping-service.yaml
//
// Jobs are idempotent, so a sweep after an outage is safe to repeat.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	service    string
	configFile string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "sweep",
		Short:         "Run meal and shopping expiry jobs on demand",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.service, "service", "s", "", "service owning the job: meal or shopping (required)")
	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML config file, defaults to CONFIG_FILE")
	_ = rootCmd.MarkPersistentFlagRequired("service")

	rootCmd.AddCommand(newRunCmd(flags), newListCmd(flags))
	return rootCmd
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job>",
		Short: "Run one job now and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), flags, args[0])
		},
	}
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the jobs of a service with their last successful run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := listJobs(cmd.Context(), flags)
			if err != nil {
				return err
			}
			printJobs(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
}

func printJobs(w io.Writer, jobs []jobStatus) {
	for _, j := range jobs {
		if !j.ran {
			fmt.Fprintf(w, "%s\tnever\n", j.name)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", j.name, j.lastRun.FinishedAt.Format(time.RFC3339), j.lastRun.Duration.Round(time.Millisecond))
	}
}
