package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/daemon"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var shapeID string
	var noiseThreshold string
	var minSilence float64
	var whisperModel string

	cmd := &cobra.Command{
		Use:   "submit <video-url>",
		Short: "Submit a video for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, err := ctx.serverURL()
			if err != nil {
				return err
			}

			options := map[string]any{}
			if noiseThreshold != "" {
				options["noise_threshold"] = noiseThreshold
			}
			if minSilence > 0 {
				options["min_silence_duration"] = minSilence
			}
			if whisperModel != "" {
				options["whisper_model"] = whisperModel
			}

			client := newAPIClient(baseURL)
			ack, err := client.Process(cmd.Context(), daemon.ProcessRequest{
				VideoURL: strings.TrimSpace(args[0]),
				ShapeID:  strings.TrimSpace(shapeID),
				Options:  options,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s submitted (%s)\n", ack.JobID, ack.Status)
			fmt.Fprintf(out, "Track it with: clipper status %s\n", ack.JobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shapeID, "shape-id", "", "External record correlation id")
	cmd.Flags().StringVar(&noiseThreshold, "noise-threshold", "", "Silence detection threshold, e.g. -30dB")
	cmd.Flags().Float64Var(&minSilence, "min-silence", 0, "Minimum silence duration in seconds")
	cmd.Flags().StringVar(&whisperModel, "whisper-model", "", "Whisper model size (tiny, base, small, medium, large)")
	_ = cmd.MarkFlagRequired("shape-id")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, err := ctx.serverURL()
			if err != nil {
				return err
			}

			client := newAPIClient(baseURL)
			status, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(status)
			}

			fmt.Fprintf(out, "Job:      %s\n", status.JobID)
			fmt.Fprintf(out, "Stage:    %s\n", status.Status)
			fmt.Fprintf(out, "Progress: %d%%\n", status.Progress)
			if status.Message != "" {
				fmt.Fprintf(out, "Message:  %s\n", status.Message)
			}
			if status.Error != "" {
				fmt.Fprintf(out, "Error:    %s\n", status.Error)
			}
			if url, ok := status.Result["output_url"].(string); ok && url != "" {
				fmt.Fprintf(out, "Output:   %s\n", url)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status payload")
	return cmd
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var stageFilters []string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs known to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, err := ctx.serverURL()
			if err != nil {
				return err
			}

			client := newAPIClient(baseURL)
			list, err := client.Jobs(cmd.Context(), stageFilters)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list.Jobs) == 0 {
				fmt.Fprintln(out, "No jobs.")
				return nil
			}

			rows := make([][]string, 0, len(list.Jobs))
			for _, job := range list.Jobs {
				rows = append(rows, []string{
					job.JobID,
					job.Status,
					strconv.Itoa(job.Progress) + "%",
					job.Message,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Stage", "Progress", "Message"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&stageFilters, "stage", nil, "Filter by stage (repeatable)")
	return cmd
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon health",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, err := ctx.serverURL()
			if err != nil {
				return err
			}

			client := newAPIClient(baseURL)
			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s (%s)\n", health.Status, health.Timestamp)
			fmt.Fprintf(out, "Jobs:   %d total, %d pending, %d processing, %d completed, %d failed\n",
				health.Jobs.Total, health.Jobs.Pending, health.Jobs.Processing,
				health.Jobs.Completed, health.Jobs.Failed)
			return nil
		},
	}
}
