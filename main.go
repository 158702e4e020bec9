package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"
)

const (
	logFileName     = "ai_art.log"
	catalogBarWidth = 40
)

// options are the persistent command-line flags
type options struct {
	cacheDir string
	saveFile string
	quiet    bool
	offline  bool
	seed     uint64
}

// app is everything a command needs once configuration is resolved
type app struct {
	cfg     *Config
	log     *slog.Logger
	catalog *Catalog
	art     *ArtManager
}

// newApp loads configuration and wires logging, the provider and the caches
func newApp(opts *options, stdout, stderr io.Writer) (*app, error) {
	cfg, err := LoadConfig(".env")
	if err != nil {
		return nil, err
	}
	if opts.offline {
		cfg.AI.Provider = ProviderNone
	}

	if err := InitTheme(cfg.Theme, cfg.ThemeFile); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if opts.quiet {
		stderr = nil
	}
	logger := newLogger(NewLogSink(filepath.Join(opts.cacheDir, logFileName)), stderr)

	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}

	t := term.FromEnv()
	var progress Progress = silentProgress{}
	if t.IsTerminalOutput() {
		progress = newSpinnerProgress(stdout)
	}

	provider := NewArtProvider(cfg.AI, NewHTTPTransport(cfg.AI.Timeout), logger)
	art, err := NewArtManager(opts.cacheDir, provider, progress, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("art provider configured", "provider", provider.Name(), "host", cfg.AI.Host, "timeout", cfg.AI.Timeout)
	return &app{cfg: cfg, log: logger, catalog: catalog, art: art}, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "asciigacha",
		Short:         "Gacha RPG with AI-generated ASCII portraits",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			game := NewGame(GameOptions{
				Catalog:  a.catalog,
				Art:      a.art,
				In:       cmd.InOrStdin(),
				Out:      cmd.OutOrStdout(),
				SavePath: opts.saveFile,
				Seed:     opts.seed,
				Pause:    defaultPause,
				Logger:   a.log,
			})
			if err := game.Load(); err != nil {
				a.log.Warn("could not load save file", "path", opts.saveFile, "error", err)
				fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render("Could not load save file: "+err.Error()))
			}
			return game.Run(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cacheDir, "cache-dir", ".cache", "directory for cached art and the diagnostic log")
	flags.StringVar(&opts.saveFile, "save-file", "gacha_save.json", "inventory save file")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not echo warnings to stderr")
	flags.BoolVar(&opts.offline, "offline", false, "never call an image service; use placeholder art")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")

	rootCmd.AddCommand(newArtCmd(opts), newCatalogCmd(), newThemesCmd())
	return rootCmd
}

// newArtCmd runs the cache pipeline for one template and prints the art
func newArtCmd(opts *options) *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:           "art <template name>",
		Short:         "Generate or fetch cached art for a catalog character",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			tmpl, err := a.catalog.Find(strings.Join(args, " "))
			if err != nil {
				return err
			}

			c := NewCharacter(0, tmpl)
			a.art.AttachASCIIArt(cmd.Context(), &c, tmpl, strings.TrimSpace(prompt))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, c.ASCIIArt)
			if c.ArtCachePath != "" {
				fmt.Fprintln(out, labelStyle.Render("cached: ")+c.ArtCachePath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "extra prompt text")
	return cmd
}

// newCatalogCmd lists every template with its roll weight
func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the characters that can be rolled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(".env")
			if err != nil {
				return err
			}
			if err := InitTheme(cfg.Theme, cfg.ThemeFile); err != nil {
				return err
			}
			catalog, err := LoadCatalog()
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
}

func printCatalog(out io.Writer, catalog *Catalog) {
	for _, rarity := range catalog.Rarities() {
		weight := catalog.Weights[rarity]
		header := fmt.Sprintf("%-5s %3.0f%% ", rarityToString(rarity), weight)
		// barStyle sets the width, just render a space to fill it
		bar := barStyle(weight/100, catalogBarWidth, CurrentTheme.RarityColor(rarity)).Render(" ")
		fmt.Fprintln(out, rarityStyle(rarity).Render(header)+bar)
		for _, t := range catalog.ByRarity(rarity) {
			fmt.Fprintf(out, "  %-16s HP %-4d ATK %-3d %s\n", t.Name, t.BaseHP, t.BaseATK, t.Skill)
		}
	}
}

// newThemesCmd lists the palettes accepted by GACHA_THEME
func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available color themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(".env")
			if err != nil {
				return err
			}
			if err := InitTheme(cfg.Theme, ""); err != nil {
				return err
			}
			for _, name := range ThemeNames() {
				marker := "  "
				if name == GetCurrentThemeName() {
					marker = "* "
				}
				fmt.Fprintln(cmd.OutOrStdout(), marker+name)
			}
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
