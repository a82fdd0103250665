package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		log.WithField("query", query).Debug("searching")

		results, err := newProvider(newClient()).Search(cmd.Context(), query)
		if err != nil {
			return errors.Wrap(err, "search failed")
		}
		return printJSON(cmd, results)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show a title and its episodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newProvider(newClient()).Info(cmd.Context(), args[0])
		if err != nil {
			return errors.Wrapf(err, "getting info for %s", args[0])
		}
		return printJSON(cmd, info)
	},
}

var serversCmd = &cobra.Command{
	Use:   "servers <episodeId>",
	Short: "List the streaming servers of an episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, err := newProvider(newClient()).Servers(cmd.Context(), args[0])
		if err != nil {
			return errors.Wrapf(err, "getting servers for %s", args[0])
		}
		return printJSON(cmd, servers)
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently updated episodes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := newProvider(newClient()).RecentEpisodes(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "getting recent episodes")
		}
		return printJSON(cmd, results)
	},
}

var topAiringCmd = &cobra.Command{
	Use:   "top-airing",
	Short: "List top airing titles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := newProvider(newClient()).TopAiring(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "getting top airing")
		}
		return printJSON(cmd, results)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, infoCmd, serversCmd, recentCmd, topAiringCmd)
}
