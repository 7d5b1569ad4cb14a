package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bodhi/internal/config"
	"bodhi/internal/hub"
	"bodhi/internal/objs"
)

func createCmd() *cobra.Command {
	var repo, filename, chatTemplate, tokenizerConfig, family string
	var force bool

	var temperature, topP, presencePenalty, frequencyPenalty float64
	var temperatureSet, topPSet, presencePenaltySet, frequencyPenaltySet bool
	var seed, maxTokens int64
	var seedSet, maxTokensSet bool
	var stop []string
	var responseFormat, user string

	var nThreads, nCtx, nParallel, nPredict int
	var nThreadsSet, nCtxSet, nParallelSet, nPredictSet bool

	cmd := &cobra.Command{
		Use:   "create <alias>",
		Short: "Create a new model alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]

			if err := validateRepo(repo); err != nil {
				return err
			}
			if err := validateFilename(filename); err != nil {
				return err
			}
			if (chatTemplate == "") == (tokenizerConfig == "") {
				return fmt.Errorf("exactly one of '--chat-template' or '--tokenizer-config' is required")
			}
			if tokenizerConfig != "" {
				if err := validateRepo(tokenizerConfig); err != nil {
					return err
				}
			}

			a := objs.Alias{
				Alias:    alias,
				Family:   family,
				Repo:     repo,
				Filename: filename,
				Snapshot: "main",
				Features: []objs.Feature{objs.FeatureChat},
			}
			if chatTemplate != "" {
				a.ChatTemplate = objs.ChatTemplate{ID: objs.ChatTemplateID(chatTemplate)}
			} else {
				a.ChatTemplate = objs.ChatTemplate{TokenizerConfig: tokenizerConfig}
			}

			if temperatureSet {
				a.RequestParams.Temperature = &temperature
			}
			if topPSet {
				a.RequestParams.TopP = &topP
			}
			if seedSet {
				a.RequestParams.Seed = &seed
			}
			if maxTokensSet {
				a.RequestParams.MaxTokens = &maxTokens
			}
			if presencePenaltySet {
				a.RequestParams.PresencePenalty = &presencePenalty
			}
			if frequencyPenaltySet {
				a.RequestParams.FrequencyPenalty = &frequencyPenalty
			}
			if len(stop) > 0 {
				a.RequestParams.Stop = stop
			}
			if responseFormat != "" {
				a.RequestParams.ResponseFormat = &responseFormat
			}
			if user != "" {
				a.RequestParams.User = &user
			}
			if nThreadsSet {
				a.ContextParams.NThreads = &nThreads
			}
			if nCtxSet {
				a.ContextParams.NCtx = &nCtx
			}
			if nParallelSet {
				a.ContextParams.NParallel = &nParallel
			}
			if nPredictSet {
				a.ContextParams.NPredict = &nPredict
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			hubAdapter, err := hub.New(cfg.Home.BodhiHome, cfg.Home.HFHome)
			if err != nil {
				return err
			}
			if _, exists := hubAdapter.FindAlias(alias); exists && !force {
				return fmt.Errorf("alias '%s' already exists, pass --force to overwrite", alias)
			}
			if err := hubAdapter.SaveAlias(a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alias '%s' created\n", alias)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&repo, "repo", "r", "", "The hugging face repo to pull the model from")
	flags.StringVarP(&filename, "filename", "f", "", "The gguf model file to pull from the repo")
	flags.StringVar(&chatTemplate, "chat-template", "", "In-built chat template to use to convert chat messages to LLM prompt")
	flags.StringVar(&tokenizerConfig, "tokenizer-config", "", "Tokenizer config repo to convert chat messages to LLM prompt")
	flags.StringVar(&family, "family", "", "Optional meta information. Family of the model.")
	flags.BoolVar(&force, "force", false, "If the alias already exists, overwrite it")

	flags.Float64Var(&temperature, "temperature", 0, "")
	flags.Float64Var(&topP, "top-p", 0, "")
	flags.Int64Var(&seed, "seed", 0, "")
	flags.Int64Var(&maxTokens, "max-tokens", 0, "")
	flags.Float64Var(&presencePenalty, "presence-penalty", 0, "")
	flags.Float64Var(&frequencyPenalty, "frequency-penalty", 0, "")
	flags.StringArrayVar(&stop, "stop", nil, "")
	flags.StringVar(&responseFormat, "response-format", "", "")
	flags.StringVar(&user, "user", "", "")

	flags.IntVar(&nThreads, "n-threads", 0, "")
	flags.IntVar(&nCtx, "n-ctx", 0, "")
	flags.IntVar(&nParallel, "n-parallel", 0, "")
	flags.IntVar(&nPredict, "n-predict", 0, "")

	trackSet := func(name string, dst *bool) {
		cmd.PreRunE = chainPreRunE(cmd.PreRunE, func(*cobra.Command, []string) error {
			*dst = flags.Changed(name)
			return nil
		})
	}
	trackSet("temperature", &temperatureSet)
	trackSet("top-p", &topPSet)
	trackSet("seed", &seedSet)
	trackSet("max-tokens", &maxTokensSet)
	trackSet("presence-penalty", &presencePenaltySet)
	trackSet("frequency-penalty", &frequencyPenaltySet)
	trackSet("n-threads", &nThreadsSet)
	trackSet("n-ctx", &nCtxSet)
	trackSet("n-parallel", &nParallelSet)
	trackSet("n-predict", &nPredictSet)

	return cmd
}

func chainPreRunE(existing func(*cobra.Command, []string) error, next func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	if existing == nil {
		return next
	}
	return func(cmd *cobra.Command, args []string) error {
		if err := existing(cmd, args); err != nil {
			return err
		}
		return next(cmd, args)
	}
}
