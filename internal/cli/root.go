package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the configuration is loaded (see
// config.FindPath) and the log level is taken from --verbose or the
// config's log.level.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "graphscope explores large node-link graphs",
		Long: `graphscope renders node-link graphs with level-of-detail labels,
spatially indexed hit-testing and animated camera moves. It runs as an
interactive terminal viewer, a headless inspector, or an HTTP API.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.prepare,
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (.toml or .yaml)")
	pf.StringVar(&c.layoutName, "layout", "", "layout provider (static, dot, neato, fdp, sfdp, circo, twopi)")
	pf.StringVar(&c.edgeMode, "edge-mode", "", "link indexing: bbox (precise link hits) or midpoint (cheaper)")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the layout cache")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.viewCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

func (c *CLI) prepare(cmd *cobra.Command, _ []string) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	c.SetLogLevel(levelFor(cfg.Log.Level, c.verbose))
	if c.cfgPath != "" {
		c.Logger.Debug("loaded config", "path", c.cfgPath)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
