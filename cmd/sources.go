package cmd

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kaizoku/internal/audit"
	"kaizoku/internal/extract"
	"kaizoku/internal/media"
	"kaizoku/internal/subtitle"
)

var (
	flagEmbed    string
	flagLanguage string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [serverId]",
	Short: "Extract video sources and captions for a server",
	Long: `Resolve a server ID to its embed page and extract the playable sources.
With --embed the catalog lookup is skipped and the given embed URL is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: sourcesRun,
}

func init() {
	sourcesCmd.Flags().StringVar(&flagEmbed, "embed", "", "Embed page URL to extract from directly")
	sourcesCmd.Flags().StringVarP(&flagLanguage, "lang", "l", "", "Keep only captions in this language")
	rootCmd.AddCommand(sourcesCmd)
}

func sourcesRun(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (flagEmbed == "") {
		return errors.New("pass either a server ID or --embed")
	}

	ctx := cmd.Context()
	client := newClient()

	embedURL := flagEmbed
	if embedURL == "" {
		var err error
		embedURL, err = newProvider(client).EmbedURL(ctx, args[0])
		if err != nil {
			return errors.Wrapf(err, "resolving server %s", args[0])
		}
	}

	out, err := extract.New(client, cfg.Timeout, log).Extract(ctx, embedURL)
	recordOutcome(ctx, embedURL, out, err)
	if err != nil {
		log.WithFields(logrus.Fields{
			"stage": extract.StageOf(err),
			"kind":  extract.Kind(err),
		}).Debug("extraction failed")
		return err
	}

	if flagLanguage != "" {
		out.Subtitles = subtitle.Select(out.Subtitles, flagLanguage)
	}

	return printJSON(cmd, out)
}

// recordOutcome appends the extraction to the audit log, if enabled. Audit
// failures are logged only.
func recordOutcome(ctx context.Context, embedURL string, out *media.Sources, err error) {
	store, oerr := openAudit()
	if oerr != nil {
		log.WithError(oerr).Warn("audit log unavailable")
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	e := audit.Outcome(embedURL, out, err)
	e.RequestID = uuid.NewString()
	if rerr := store.Record(context.WithoutCancel(ctx), e); rerr != nil {
		log.WithError(rerr).Warn("audit write failed")
	}
}
