package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/yuletide/internal/config"
	"github.com/ayusman/yuletide/internal/hook"
)

func newHooksCmd(logger func() *log.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "List the hooks that would run on scene events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			m := hook.NewManager(cfg.Hooks.Dir)
			if err := m.Discover(); err != nil {
				return err
			}
			logger().Debug("hook dir scanned", "dir", m.Dir())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tEVENTS\tDESCRIPTION")
			for _, h := range m.List() {
				events := make([]string, len(h.Manifest.Events))
				for i, ev := range h.Manifest.Events {
					events[i] = string(ev)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Manifest.Name, h.Manifest.Version, strings.Join(events, ","), h.Manifest.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.yuletide/config.toml)")
	return cmd
}
