/*
Copyright © 2023 dimas maulana dimasmaulana0305@gmail.com
*/
package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"

	"github.com/dimasma0305/ctfdsync/function/ctfsync"
	"github.com/dimasma0305/ctfdsync/function/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const tokenEnv = "CTFD_TOKEN"

var syncFlags ctfsync.Options

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ctfdsync -d <directory> -t <token> [-u <url>]",
	Short: "Download the challenges of a CTFd platform into a local directory.",
	Long: `ctfdsync mirrors the challenges of a CTFd competition into a directory tree,
one folder per category and challenge, each with a README.md and its attachments.

The platform url is stored in the directory on the first run, so later runs only
need the directory and the token. Files that are already on disk are never
downloaded again, READMEs are rewritten every time.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Enable debug mode if flag is set
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("could not load .env: %v", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if syncFlags.Token == "" {
			syncFlags.Token = os.Getenv(tokenEnv)
		}
		summary, err := ctfsync.Run(cmd.Context(), syncFlags)
		if err != nil {
			log.Fatal(err)
		}
		log.Info("synced %s", summary)
		if summary.Failed > 0 || summary.Warnings > 0 {
			log.Warn("finished with %d failed challenges and %d warnings, see above", summary.Failed, summary.Warnings)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&syncFlags.Directory, "directory", "d", "", "Directory to write the challenges to")
	rootCmd.Flags().StringVarP(&syncFlags.Token, "token", "t", "", "CTFd access token (default $"+tokenEnv+")")
	rootCmd.Flags().StringVarP(&syncFlags.Url, "url", "u", "", "CTFd platform url, required on the first run only")
	rootCmd.Flags().BoolVarP(&syncFlags.Verbose, "verbose", "v", false, "Print one line per challenge")
	rootCmd.Flags().StringVar(&syncFlags.Category, "category", "", "Only sync challenges of this category")
	rootCmd.Flags().Float64Var(&syncFlags.RateLimit, "rate", 0, "Maximum requests per second, 0 for no limit")
	rootCmd.Flags().BoolVar(&syncFlags.Commit, "commit", false, "Record every sync as a git commit in the directory")
	rootCmd.Flags().BoolVar(&syncFlags.Insecure, "insecure", false, "Skip TLS certificate verification")
	rootCmd.Flags().StringVar(&syncFlags.UserAgent, "user-agent", "", "Override the User-Agent header")
	rootCmd.MarkFlagRequired("directory")
}
