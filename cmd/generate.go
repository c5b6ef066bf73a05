package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/brickmetric/leadpulse/internal/dataset"
	"github.com/brickmetric/leadpulse/internal/logger"
)

var (
	generateDir   string
	generateSeed  int64
	generateLeads int
	generateCalls int
	generateYes   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate sample leads and calls datasets",
	RunE: func(_ *cobra.Command, _ []string) error {
		zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		leadsPath := filepath.Join(generateDir, "leads.csv")
		callsPath := filepath.Join(generateDir, "calls.json")

		if !generateYes && anyExists(leadsPath, callsPath) {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("Overwrite existing files in %s", generateDir),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				zl.Info("exiting", zap.String("reason", "overwrite declined"))
				return nil
			}
		}

		gen := dataset.NewGenerator(generateSeed)

		leadBatch := gen.Leads(generateLeads)
		if err := dataset.WriteLeadsCSV(leadsPath, leadBatch); err != nil {
			return err
		}
		zl.Info("leads written", zap.String("path", leadsPath), zap.Int("count", len(leadBatch)))

		callBatch := gen.Calls(generateCalls, generateLeads)
		if err := dataset.WriteCallsJSON(callsPath, callBatch); err != nil {
			return err
		}
		zl.Info("calls written", zap.String("path", callsPath), zap.Int("count", len(callBatch)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateDir, "dir", "data", "output directory")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 1, "random seed for reproducible datasets")
	generateCmd.Flags().IntVar(&generateLeads, "leads", dataset.DefaultLeadCount, "number of leads to generate")
	generateCmd.Flags().IntVar(&generateCalls, "calls", dataset.DefaultCallCount, "number of calls to generate")
	generateCmd.Flags().BoolVarP(&generateYes, "yes", "y", false, "overwrite existing files without asking")
}

func anyExists(paths ...string) bool {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}
