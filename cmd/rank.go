package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/climate-rank/internal/engine"
	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
	"github.com/sells-group/climate-rank/internal/store"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score and rank companies from disclosure records",
	Long: `Rank companies by climate performance under a weighting profile.

Records come from an input file (--input, CSV/JSON/XLSX) or from the
configured store. Profiles are built in ("stewardship", "transition") or
loaded from a YAML file.

Examples:
  # Rank records from a CSV under the default profile
  rank --input disclosures.csv

  # Rank stored records under a custom profile, save the run
  rank --profile strategies/aggressive.yaml --save

  # Compare every built-in profile over one input
  rank --input disclosures.json --all-profiles

  # Export as CSV
  rank --input disclosures.csv --format csv --output ranking.csv`,
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("input", "", "input file (.csv, .json, or .xlsx; default: load from store)")
	f.String("profile", "", "profile name or YAML file path (default from config)")
	f.Bool("all-profiles", false, "rank under every built-in profile")
	f.String("format", "table", "output format: table, csv, or json")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "save the ranking to the store")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputPath, _ := cmd.Flags().GetString("input")
	profileArg, _ := cmd.Flags().GetString("profile")
	allProfiles, _ := cmd.Flags().GetBool("all-profiles")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("rank: --format must be table, csv, or json (got %q)", format)
	}
	if allProfiles && profileArg != "" {
		return eris.New("rank: --profile and --all-profiles are mutually exclusive")
	}

	log := zap.L().With(zap.String("command", "rank"))

	// The store is needed when records come from it or when saving results.
	var st store.Store
	if inputPath == "" || save {
		var err error
		st, err = initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
	}

	// Load records.
	var records []model.DisclosureRecord
	if inputPath != "" {
		var err error
		records, err = readRecordsFile(inputPath)
		if err != nil {
			return err
		}
		log.Info("loaded records from file",
			zap.String("input", inputPath),
			zap.Int("records", len(records)),
		)
	} else {
		var err error
		records, err = st.LoadRecords(ctx)
		if err != nil {
			return err
		}
		log.Info("loaded records from store", zap.Int("records", len(records)))
	}

	// Resolve profiles to run.
	var profiles []profile.Profile
	if allProfiles {
		for _, name := range profile.Names() {
			p, err := profile.Builtin(name)
			if err != nil {
				return err
			}
			profiles = append(profiles, p)
		}
	} else {
		if profileArg == "" {
			profileArg = cfg.Rank.Profile
		}
		p, err := resolveProfile(profileArg)
		if err != nil {
			return err
		}
		profiles = []profile.Profile{p}
	}

	// Rank under each profile concurrently.
	rankings := make([]*model.Ranking, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eng, err := engine.New(p)
			if err != nil {
				return err
			}
			ranking, err := eng.Rank(records)
			if err != nil {
				return eris.Wrapf(err, "rank: profile %s", p.Name)
			}
			rankings[i] = ranking
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if save {
		for _, ranking := range rankings {
			id, err := st.SaveRanking(ctx, ranking)
			if err != nil {
				return err
			}
			fmt.Printf("Saved ranking %s (profile %s)\n", id, ranking.Profile)
		}
	}

	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "rank: create output file %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	for _, ranking := range rankings {
		if err := writeRanking(w, ranking, format); err != nil {
			return err
		}
	}
	return nil
}

// resolveProfile treats arguments with a YAML extension (or a path
// separator) as files, everything else as a built-in profile name.
func resolveProfile(arg string) (profile.Profile, error) {
	lower := strings.ToLower(arg)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.ContainsRune(arg, os.PathSeparator) {
		return profile.LoadFile(arg)
	}
	return profile.Builtin(arg)
}

func writeRanking(w io.Writer, ranking *model.Ranking, format string) error {
	switch format {
	case "csv":
		return writeRankCSV(w, ranking)
	case "json":
		return writeRankJSON(w, ranking)
	case "table":
		return writeRankTable(w, ranking)
	default:
		return eris.Errorf("rank: unsupported format %q", format)
	}
}

func writeRankJSON(w io.Writer, ranking *model.Ranking) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(ranking), "rank: encode JSON")
}

func writeRankCSV(w io.Writer, ranking *model.Ranking) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"position", "entity_id", "overall", "tier", "emissions", "trend", "credibility", "target", "warnings"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "rank: write CSV header")
	}

	for i, s := range ranking.Scores {
		row := []string{
			fmt.Sprintf("%d", i+1),
			s.EntityID,
			fmt.Sprintf("%.1f", s.Overall),
			string(s.Tier),
			fmt.Sprintf("%.1f", s.Components.Emissions),
			fmt.Sprintf("%.1f", s.Components.Trend),
			fmt.Sprintf("%.1f", s.Components.Credibility),
			fmt.Sprintf("%.1f", s.Components.Target),
			joinWarnings(s.Warnings),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "rank: write CSV row")
		}
	}
	return nil
}

func writeRankTable(w io.Writer, ranking *model.Ranking) error {
	if _, err := fmt.Fprintf(w, "Profile: %s (config %s)\n", ranking.Profile, ranking.ConfigHash); err != nil {
		return eris.Wrap(err, "rank: write table title")
	}
	header := fmt.Sprintf("%-4s %-30s %7s %-8s %-40s\n", "#", "Entity", "Score", "Tier", "Warnings")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "rank: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 92)); err != nil {
		return eris.Wrap(err, "rank: write table separator")
	}

	for i, s := range ranking.Scores {
		name := s.EntityID
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		line := fmt.Sprintf("%-4d %-30s %7.1f %-8s %-40s\n",
			i+1, name, s.Overall, s.Tier, joinWarnings(s.Warnings))
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "rank: write table row")
		}
	}

	printTierSummary(w, ranking)
	return nil
}

func printTierSummary(w io.Writer, ranking *model.Ranking) {
	counts := map[model.Tier]int{}
	for _, s := range ranking.Scores {
		counts[s.Tier]++
	}
	tiers := make([]string, 0, len(counts))
	for t := range counts {
		tiers = append(tiers, string(t))
	}
	sort.Strings(tiers)

	fmt.Fprintf(w, "\n--- Summary ---\n")
	fmt.Fprintf(w, "Total ranked: %d\n", len(ranking.Scores))
	for _, t := range tiers {
		fmt.Fprintf(w, "%-10s %d\n", t+":", counts[model.Tier(t)])
	}
}

func joinWarnings(warnings []model.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = string(w)
	}
	return strings.Join(parts, ",")
}
