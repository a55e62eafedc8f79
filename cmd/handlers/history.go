package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpintar/countland/internal/config"
	"github.com/jpintar/countland/internal/store"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	var limit int
	var showScores bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List stored benchmark runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(limit, showScores)
		},
	}

	historyCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	historyCmd.Flags().BoolVar(&showScores, "scores", false, "include per-pipeline scores for each run")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear()
		},
	})

	return historyCmd
}

func openStore() (*store.Store, error) {
	return store.NewStore(config.Get().Store.Directory)
}

func runHistory(limit int, showScores bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s (%d genes x %d cells, seed %d)\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Source, r.Genes, r.Cells, r.Seed)
		if !showScores {
			continue
		}
		scores, err := st.RunScores(r.ID)
		if err != nil {
			return err
		}
		for _, s := range scores {
			name := s.Pipeline
			if s.Variant != "full" {
				name = fmt.Sprintf("%s (%s)", s.Pipeline, s.Variant)
			}
			fmt.Printf("    %-36s ARI %.3f  NMI %.3f  hom %.3f  %.2fs\n",
				name, s.Score.ARI, s.Score.NMI, s.Score.Homogeneity, s.Seconds)
		}
	}

	stats, err := st.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("\n%d runs, %d scores, %d bytes on disk\n",
		stats.RunCount, stats.ScoreCount, stats.StoreSize)

	return nil
}

func runHistoryClear() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Clear(); err != nil {
		return err
	}
	console.Info().Msg("Run history cleared")
	return nil
}
