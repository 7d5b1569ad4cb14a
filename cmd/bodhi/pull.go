package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bodhi/internal/objs"
)

func validateRepo(repo string) error {
	if !objs.RegexRepo.MatchString(repo) {
		return fmt.Errorf("invalid value '%s' for '--repo <REPO>': does not match huggingface repo format - 'owner/repo'", repo)
	}
	return nil
}

func validateFilename(filename string) error {
	if len(filename) < len(objs.GGUFExtension) || filename[len(filename)-len(objs.GGUFExtension):] != objs.GGUFExtension {
		return fmt.Errorf("invalid value '%s' for '--filename <FILENAME>': only GGUF file extension supported", filename)
	}
	return nil
}

func pullCmd() *cobra.Command {
	var repo string
	var filename string
	var force bool

	cmd := &cobra.Command{
		Use:   "pull [alias]",
		Short: "Pull a gguf model from huggingface repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var alias string
			if len(args) == 1 {
				alias = args[0]
			}

			switch {
			case alias != "" && (repo != "" || filename != ""):
				return fmt.Errorf("the argument '[ALIAS]' cannot be used with '--repo <REPO>'")
			case alias == "" && repo == "" && filename == "":
				return fmt.Errorf("the following required arguments were not provided: <ALIAS|--repo <REPO>>")
			case alias == "" && (repo == "" || filename == ""):
				return fmt.Errorf("'--repo <REPO>' and '--filename <FILENAME>' must be given together")
			}

			if repo != "" {
				if err := validateRepo(repo); err != nil {
					return err
				}
			}
			if filename != "" {
				if err := validateFilename(filename); err != nil {
					return err
				}
			}

			return runPull(cmd, alias, repo, filename, force)
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "The hugging face repo to pull the model from, e.g. `bartowski/Meta-Llama-3-8B-Instruct-GGUF`")
	cmd.Flags().StringVarP(&filename, "filename", "f", "", "The gguf model file to pull from the repo")
	cmd.Flags().BoolVar(&force, "force", false, "If the file already exists in $HF_HOME, force download it again")
	return cmd
}

func runPull(cmd *cobra.Command, alias, repo, filename string, force bool) error {
	if alias != "" {
		for _, a := range builtinRemoteAliases {
			if a.Alias == alias {
				fmt.Fprintf(cmd.OutOrStdout(), "pulling %s from %s/%s (not yet downloaded: network fetch is out of scope)\n", alias, a.Repo, a.Filename)
				return nil
			}
		}
		return fmt.Errorf("alias '%s' not found in remote catalog, run `bodhi list -r` to see available aliases", alias)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pulling %s/%s (not yet downloaded: network fetch is out of scope)\n", repo, filename)
	return nil
}
