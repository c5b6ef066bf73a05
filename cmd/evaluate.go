package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/brickmetric/leadpulse/internal/calls"
	"github.com/brickmetric/leadpulse/internal/dataset"
	"github.com/brickmetric/leadpulse/internal/evaluation"
	"github.com/brickmetric/leadpulse/internal/leads"
	"github.com/brickmetric/leadpulse/internal/llm"
	"github.com/brickmetric/leadpulse/internal/logger"
)

var (
	evalLeadsFile      string
	evalCallsFile      string
	evalLeadLabelsFile string
	evalCallLabelsFile string
	evalThreshold      float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate scoring quality against labeled datasets",
}

// evaluateLeadsCmd scores labeled leads offline. The LLM stays out of the
// loop so the report measures the deterministic rules alone.
var evaluateLeadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Compare predicted priority buckets against labels",
	RunE: func(cmd *cobra.Command, _ []string) error {
		zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		batch, err := dataset.LoadLeadsCSV(evalLeadsFile)
		if err != nil {
			return err
		}
		truth, err := dataset.LoadLabelsCSV(evalLeadLabelsFile)
		if err != nil {
			return err
		}

		zl.Info("evaluating leads",
			zap.Int("leads", len(batch)),
			zap.Int("labels", len(truth)),
		)

		scorer := leads.NewScorer(leads.NewNotesInterpreter(offlineGateway(zl), 0, 0, zl), 0, zl)
		report := evaluation.EvaluateLeads(cmd.Context(), scorer, batch, truth)

		return printReport(report)
	},
}

var evaluateCallsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Compare call close predictions against labels",
	RunE: func(cmd *cobra.Command, _ []string) error {
		zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		records, err := dataset.LoadCallsJSON(evalCallsFile)
		if err != nil {
			return err
		}
		truth, err := dataset.LoadLabelsCSV(evalCallLabelsFile)
		if err != nil {
			return err
		}

		zl.Info("evaluating calls",
			zap.Int("calls", len(records)),
			zap.Int("labels", len(truth)),
			zap.Float64("threshold", evalThreshold),
		)

		evaluator := calls.NewEvaluator(offlineGateway(zl), 0, zl)
		report := evaluation.EvaluateCalls(cmd.Context(), evaluator, records, truth, evalThreshold)

		return printReport(report)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.AddCommand(evaluateLeadsCmd)
	evaluateCmd.AddCommand(evaluateCallsCmd)

	evaluateLeadsCmd.Flags().StringVar(&evalLeadsFile, "leads-file", "data/leads.csv", "leads dataset")
	evaluateLeadsCmd.Flags().StringVar(&evalLeadLabelsFile, "labels-file", "data/eval_leads_labels.csv", "ground truth labels")

	evaluateCallsCmd.Flags().StringVar(&evalCallsFile, "calls-file", "data/calls.json", "calls dataset")
	evaluateCallsCmd.Flags().StringVar(&evalCallLabelsFile, "labels-file", "data/eval_calls_labels.csv", "ground truth labels")
	evaluateCallsCmd.Flags().Float64Var(&evalThreshold, "threshold", evaluation.DefaultCallThreshold, "quality score counted as a predicted close")
}

func offlineGateway(zl *zap.Logger) *llm.Gateway {
	return llm.NewGateway(llm.Unavailable{}, llm.GatewayConfig{MaxAttempts: 1, InitialBackoff: -1}, zl)
}

func printReport(report any) error {
	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(pretty))
	return nil
}
