// Package ctfsync drives one synchronization of a CTFd platform into a local directory.
package ctfsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dimasma0305/ctfdsync/function/config"
	"github.com/dimasma0305/ctfdsync/function/creds"
	"github.com/dimasma0305/ctfdsync/function/log"
	"github.com/dimasma0305/ctfdsync/function/materialize"
	"github.com/dimasma0305/ctfdsync/function/scraper/ctfd"
	"github.com/dimasma0305/ctfdsync/function/snapshot"
	"github.com/hokaccha/go-prettyjson"
)

type Options struct {
	Directory string
	Token     string
	Url       string
	Verbose   bool

	// Category keeps only challenges of that category, case-insensitive.
	Category string
	// RateLimit caps requests per second, 0 means unlimited.
	RateLimit float64
	Insecure  bool
	UserAgent string
	// Commit records the synced tree as a git commit.
	Commit bool

	Now func() time.Time
}

type Summary struct {
	Total    int
	Created  int
	Skipped  int
	Partial  int
	Failed   int
	Warnings int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d challenges: %d created, %d up to date, %d partial, %d failed, %d warnings",
		s.Total, s.Created, s.Skipped, s.Partial, s.Failed, s.Warnings)
}

// Run synchronizes every challenge of the platform into opts.Directory.
// It fails only when the configuration is missing or the challenge list
// cannot be fetched; everything after that is reported in the Summary.
func Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	flags := creds.CredsStruct{Token: opts.Token, Url: opts.Url, Directory: opts.Directory}
	if err := flags.Validate(); err != nil {
		return summary, fmt.Errorf("%w: %w", config.ErrMissingConfiguration, err)
	}

	conf, err := config.Resolve(opts.Directory, opts.Url, now())
	if err != nil {
		return summary, err
	}

	clientOpts := []ctfd.Option{ctfd.WithRateLimit(opts.RateLimit)}
	if opts.Insecure {
		clientOpts = append(clientOpts, ctfd.WithInsecureSkipVerify())
	}
	if opts.UserAgent != "" {
		clientOpts = append(clientOpts, ctfd.WithUserAgent(opts.UserAgent))
	}
	client := ctfd.New(conf.PlatformURL, opts.Token, clientOpts...)

	challenges, err := client.ListChallenges(ctx)
	if err != nil {
		return summary, fmt.Errorf("error fetch challenge list from %s: %w", conf.PlatformURL, err)
	}
	if opts.Category != "" {
		challenges = challenges.Filter(func(chall *ctfd.ChallengeInfo) bool {
			return strings.EqualFold(chall.Category, opts.Category)
		})
	}
	if len(challenges) == 0 {
		log.Warn("no challenges found on %s", client.HostName())
	}

	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return summary, fmt.Errorf("%w: %w", materialize.ErrFilesystem, err)
	}
	m := materialize.New(opts.Directory, client)

	for _, chall := range challenges {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Total++
		syncChallenge(ctx, client, m, chall, opts.Verbose, &summary)
	}

	conf.Touch(now())
	if err := config.Save(opts.Directory, conf); err != nil {
		return summary, err
	}

	if opts.Commit {
		message := fmt.Sprintf("sync #%d from %s\n\n%s\n", conf.SyncCount, conf.PlatformURL, summary)
		if _, err := snapshot.Commit(opts.Directory, message, now(), config.CONFIG_FILE); err != nil {
			if !errors.Is(err, snapshot.ErrNothingToCommit) {
				summary.Warnings++
				log.Warn("could not commit snapshot: %v", err)
			}
		}
	}
	return summary, nil
}

// syncChallenge processes a single challenge. Failures are logged and counted, never returned.
func syncChallenge(ctx context.Context, client *ctfd.Client, m *materialize.Materializer, chall *ctfd.ChallengeInfo, verbose bool, summary *Summary) {
	full, err := client.GetFullInfo(ctx, chall)
	if err != nil {
		summary.Failed++
		log.ErrorH2("%s (%s, id %d): %v", chall.Name, chall.Category, chall.Id, err)
		return
	}
	if log.IsDebug() {
		data, _ := prettyjson.Marshal(full)
		log.Debug("challenge %d:\n%s", full.Id, data)
	}

	out, err := m.Materialize(ctx, full)
	summary.Warnings += len(out.Warnings)
	if err != nil {
		summary.Failed++
		log.ErrorH2("%s (%s, id %d): %v", full.Name, full.Category, full.Id, err)
		return
	}

	switch out.Status {
	case materialize.StatusCreated:
		summary.Created++
	case materialize.StatusSkipped:
		summary.Skipped++
	case materialize.StatusPartial:
		summary.Partial++
	}
	if verbose {
		log.Info("%s/%s: %s (%d downloaded, %d already present)",
			full.Category, full.Name, out.Status, len(out.Downloaded), len(out.Skipped))
	}
}
