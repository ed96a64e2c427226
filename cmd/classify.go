/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/lungsight/apiserver/config"
	"github.com/lungsight/apiserver/internal/vision"
	"github.com/lungsight/apiserver/types"
	"github.com/spf13/cobra"
)

var classifyThreshold float64

// classifyCmd runs a one-off classification without starting the server.
var classifyCmd = &cobra.Command{
	Use:   "classify [image]",
	Short: "Classify a chest X-ray image from the command line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		classifier := vision.NewClassifier(cfg.Model)
		if err := classifier.Load(); err != nil {
			return fmt.Errorf("load model failed: %w", err)
		}

		result, err := classifier.Classify(args[0], classifyThreshold)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "analyzed file: %s\n", result.AnalyzedFile)
		for _, name := range types.Conditions {
			score := result.Results[name]
			fmt.Fprintf(os.Stdout, "%-32s %.4f  %s\n", name, score.Probability, score.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().Float64VarP(&classifyThreshold, "threshold", "t", 0, "decision threshold (0 uses the default)")
}
