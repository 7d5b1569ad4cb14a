package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bodhi/internal/config"
	"bodhi/internal/hub"
	"bodhi/internal/objs"
)

func listCmd() *cobra.Command {
	var remote bool
	var models bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Default: list the model aliases configured on local system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote && models {
				return fmt.Errorf("the argument '--remote' cannot be used with '--models'")
			}
			switch {
			case remote:
				return listRemote(cmd)
			case models:
				return listModels(cmd)
			default:
				return listLocal(cmd)
			}
		},
	}

	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "List pre-configured model aliases available to download and configure")
	cmd.Flags().BoolVarP(&models, "models", "m", false, "List the GGUF model files from Huggingface cache folder on local system")
	return cmd
}

func listLocal(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	hubAdapter, err := hub.New(cfg.Home.BodhiHome, cfg.Home.HFHome)
	if err != nil {
		return err
	}
	aliases := hubAdapter.ListAliases()
	if len(aliases) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no model aliases configured, use `bodhi create` or `bodhi pull` to add one")
		return nil
	}
	for _, a := range aliases {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/%s\n", a.Alias, a.Repo, a.Filename)
	}
	return nil
}

// listRemote lists the pre-configured remote alias catalog bundled with
// the binary, recovered from the original Rust distribution's bundled
// alias list.
func listRemote(cmd *cobra.Command) error {
	for _, a := range builtinRemoteAliases {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/%s\n", a.Alias, a.Repo, a.Filename)
	}
	return nil
}

func listModels(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	hubDir := filepath.Join(cfg.Home.HFHome, "hub")
	if _, err := os.Stat(hubDir); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "no files found under", hubDir)
		return nil
	}
	return filepath.WalkDir(hubDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), objs.GGUFExtension) {
			return nil
		}
		rel, err := filepath.Rel(hubDir, path)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rel)
		return nil
	})
}

// builtinRemoteAliases is the small pre-configured catalog `bodhi pull
// <alias>` and `bodhi list -r` resolve against, recovered from
// original_source's bundled remote alias list.
var builtinRemoteAliases = []objs.Alias{
	{
		Alias:        "llama3:instruct",
		Family:       "llama3",
		Repo:         "QuantFactory/Meta-Llama-3-8B-Instruct-GGUF",
		Filename:     "Meta-Llama-3-8B-Instruct.Q8_0.gguf",
		Features:     []objs.Feature{objs.FeatureChat},
		ChatTemplate: objs.ChatTemplate{ID: objs.ChatTemplateLlama3},
	},
	{
		Alias:        "phi3:mini",
		Family:       "phi3",
		Repo:         "microsoft/Phi-3-mini-4k-instruct-gguf",
		Filename:     "Phi-3-mini-4k-instruct-q4.gguf",
		Features:     []objs.Feature{objs.FeatureChat},
		ChatTemplate: objs.ChatTemplate{ID: objs.ChatTemplatePhi3},
	},
	{
		Alias:        "gemma:instruct",
		Family:       "gemma",
		Repo:         "google/gemma-1.1-7b-it-GGUF",
		Filename:     "gemma-1.1-7b-it.Q8_0.gguf",
		Features:     []objs.Feature{objs.FeatureChat},
		ChatTemplate: objs.ChatTemplate{ID: objs.ChatTemplateGemma},
	},
}
