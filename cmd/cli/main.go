package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"godrift/adapters/api"
	"godrift/adapters/text/drift"
	"godrift/app"
	"godrift/domain/anomaly"
	"godrift/domain/series"
	"godrift/domain/text"
	"godrift/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "godrift",
		Short: "Anomaly detection over cleaned tabular and text datasets",
	}

	rootCmd.AddCommand(
		newDetectCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDetectCmd() *cobra.Command {
	var (
		zScore      float64
		maWindow    int
		pctLower    float64
		pctUpper    float64
		similarity  float64
		minDuration int
		timeout     time.Duration
		baseline    int
	)

	cmd := &cobra.Command{
		Use:   "detect [dataset.json]",
		Short: "Run detection over a cleaned dataset file",
		Long: `Run all detectors over a dataset file produced by the data processor.

The file carries cleaned numeric series and bucketed text documents:

  {"series": [{"name": "revenue", "points": [{"timestamp": "...", "value": 1.0}]}],
   "text": {"tickets": [{"window": {"start": "...", "end": "..."}, "documents": [...]}]}}

Ranked anomalies are printed as JSON on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var payload api.DatasetPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("malformed dataset file: %w", err)
			}

			params := anomaly.DetectionParameters{
				ZScoreThreshold:         zScore,
				MovingAverageWindow:     maWindow,
				PercentileThresholds:    [2]float64{pctLower, pctUpper},
				TextSimilarityThreshold: similarity,
				MinimumAnomalyDuration:  minDuration,
			}
			req, err := payload.ToRequest(params, timeout)
			if err != nil {
				return err
			}

			service := app.NewDefaultDetectionService(drift.Options{BaselineBuckets: baseline})
			result, err := service.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	defaults := anomaly.DefaultParameters()
	cmd.Flags().Float64Var(&zScore, "zscore-threshold", defaults.ZScoreThreshold, "z-score flag threshold")
	cmd.Flags().IntVar(&maWindow, "moving-average-window", defaults.MovingAverageWindow, "rolling window size in points")
	cmd.Flags().Float64Var(&pctLower, "percentile-lower", defaults.PercentileThresholds[0], "lower percentile threshold")
	cmd.Flags().Float64Var(&pctUpper, "percentile-upper", defaults.PercentileThresholds[1], "upper percentile threshold")
	cmd.Flags().Float64Var(&similarity, "text-similarity-threshold", defaults.TextSimilarityThreshold, "topic similarity flag threshold")
	cmd.Flags().IntVar(&minDuration, "min-anomaly-duration", defaults.MinimumAnomalyDuration, "minimum flagged points per anomaly")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall run budget (0 disables)")
	cmd.Flags().IntVar(&baseline, "drift-baseline-buckets", drift.DefaultBaselineBuckets, "trailing buckets aggregated as drift baseline")
	return cmd
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run detection over a synthetic dataset with injected anomalies",
		RunE: func(cmd *cobra.Command, args []string) error {
			points := testkit.WithSpike(testkit.GeneratePoints(96, 100, 2, 42), 60, 400)
			revenue := testkit.MustSeries("revenue", points)

			buckets := testkit.GenerateBuckets(8, 12,
				[]string{"invoice", "payment", "shipment", "report", "audit", "review"},
				[]string{"finance", "operations"}, 42)
			testkit.InjectKeywordBurst(buckets, 7, "outage", 8)

			service := app.NewDefaultDetectionService(drift.Options{})
			result, err := service.Run(cmd.Context(), app.Request{
				Series: []*series.TimeSeries{revenue},
				Text:   map[string][]text.Bucket{"tickets": buckets},
				Params: anomaly.DefaultParameters(),
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
