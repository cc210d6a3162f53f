package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/yz4230/retrigger/internal/deploy"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/github"
	"github.com/yz4230/retrigger/internal/repository"
	"github.com/yz4230/retrigger/internal/utils"
)

var triggerFlags struct {
	token       string
	message     string
	concurrency int
	rateLimited bool
	user        string
}

var errMissingToken = errors.New("missing GitHub token: pass --token or set GITHUB_TOKEN")

var triggerCmd = &cobra.Command{
	Use:   "trigger owner/repo@branch[,branch...] ...",
	Short: "Push empty commits to the given branches and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := triggerFlags.token
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			return errMissingToken
		}
		if triggerFlags.concurrency < 0 {
			return fmt.Errorf("invalid concurrency %d", triggerFlags.concurrency)
		}
		targets, err := parseTargets(args, triggerFlags.message)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx = log.Logger.WithContext(ctx)

		client := github.NewClient(appConfig.GitHub, log.Logger)
		orchestrator := deploy.NewOrchestrator(client)

		var batch entity.BatchDeploymentResult
		if triggerFlags.rateLimited {
			batch = orchestrator.TriggerRateLimitedBatch(ctx, token, targets, appConfig.Deploy.Queue())
		} else {
			concurrency := lo.Ternary(triggerFlags.concurrency > 0, triggerFlags.concurrency, appConfig.Deploy.Concurrency)
			batch = orchestrator.TriggerBatchDeployment(ctx, token, targets, deploy.BatchOptions{Concurrency: concurrency})
		}

		recordHistory(ctx, batch)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	},
}

// parseTargets turns "owner/repo@main,develop" arguments into targets.
func parseTargets(args []string, message string) ([]entity.DeploymentTarget, error) {
	targets := make([]entity.DeploymentTarget, 0, len(args))
	for _, arg := range args {
		fullName, rawBranches, found := strings.Cut(arg, "@")
		if !found {
			return nil, fmt.Errorf("invalid target %q: expected owner/repo@branch", arg)
		}
		owner, repo, ok := utils.SplitFullName(fullName)
		if !ok {
			return nil, fmt.Errorf("invalid repository %q: expected owner/repo", fullName)
		}
		branches := lo.Uniq(lo.Compact(lo.Map(strings.Split(rawBranches, ","), func(b string, _ int) string {
			return strings.TrimSpace(b)
		})))
		target := entity.DeploymentTarget{Owner: owner, Repo: repo, Branches: branches, Message: message}
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("invalid target %q: no branches", arg)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// recordHistory stores the batch in the configured database. A failure is
// only logged.
func recordHistory(ctx context.Context, batch entity.BatchDeploymentResult) {
	if appConfig.Database.DSN == ":memory:" {
		return
	}
	db, err := repository.NewSQLiteDB(appConfig.Database.DSN)
	if err != nil {
		log.Warn().Err(err).Msg("failed to open history database")
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	logs := repository.NewDeploymentLogRepository(db)
	for _, l := range entity.LogsFromBatch(triggerFlags.user, entity.DeploymentSourceCLI, batch) {
		if _, err := logs.Create(context.WithoutCancel(ctx), l); err != nil {
			log.Warn().Err(err).Str("repo", l.Repo).Str("branch", l.Branch).Msg("failed to record deployment history")
		}
	}
}

func init() {
	triggerCmd.Flags().StringVarP(&triggerFlags.token, "token", "t", "", "GitHub token (default $GITHUB_TOKEN)")
	triggerCmd.Flags().StringVarP(&triggerFlags.message, "message", "m", "", "Commit message (default chore: trigger rebuild [timestamp])")
	triggerCmd.Flags().IntVar(&triggerFlags.concurrency, "concurrency", 0, "Repositories deployed per wave (default deploy.concurrency)")
	triggerCmd.Flags().BoolVar(&triggerFlags.rateLimited, "rate-limited", false, "Run through the rate-limited queue instead of waves")
	triggerCmd.Flags().StringVar(&triggerFlags.user, "user", "cli", "User id recorded in the deployment history")
}
