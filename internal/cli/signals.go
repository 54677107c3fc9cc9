package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/pkg/utils"
)

func newSignalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Manage trading signals",
		Long:  "Log long/short signals with entry, target and stop levels.",
	}

	cmd.AddCommand(newSignalsListCmd(app))
	cmd.AddCommand(newSignalsAddCmd(app))
	cmd.AddCommand(newSignalsStatusCmd(app))
	cmd.AddCommand(newSignalsDeleteCmd(app))

	return cmd
}

func newSignalsListCmd(app *App) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store is not available")
			}

			signals, err := app.Store.ListSignals(cmd.Context(), localUserID)
			if err != nil {
				return err
			}
			if activeOnly {
				filtered := signals[:0]
				for _, s := range signals {
					if s.Status == models.SignalActive {
						filtered = append(filtered, s)
					}
				}
				signals = filtered
			}

			if output.IsJSON() {
				return output.JSON(signals)
			}
			if len(signals) == 0 {
				output.Dim("No signals logged.")
				return nil
			}

			table := NewTable(output, "ID", "COIN", "TYPE", "ENTRY", "TARGET", "STOP", "RISK", "STATUS")
			for _, s := range signals {
				table.AddRow(
					shortID(s.ID),
					s.Coin,
					string(s.Type),
					utils.FormatUSD(s.EntryPrice),
					utils.FormatUSD(s.TargetPrice),
					utils.FormatUSD(s.StopLoss),
					string(s.Risk),
					output.StatusTag(string(s.Status)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only show active signals")
	return cmd
}

func newSignalsAddCmd(app *App) *cobra.Command {
	var (
		coin        string
		sigType     string
		entry       float64
		target      float64
		stop        float64
		risk        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new signal",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store is not available")
			}

			if strings.TrimSpace(coin) == "" {
				return apperrors.NewValidationError("coin", coin, "coin name must not be empty")
			}
			st := models.SignalType(sigType)
			if st != models.SignalLong && st != models.SignalShort {
				return apperrors.NewValidationError("type", sigType, "type must be long or short")
			}
			if entry <= 0 || target <= 0 {
				return apperrors.NewValidationError("entry", entry, "entry and target prices must be positive")
			}
			r := models.Risk(risk)
			if r != models.RiskLow && r != models.RiskMedium && r != models.RiskHigh {
				return apperrors.NewValidationError("risk", risk, "risk must be low, medium or high")
			}

			signal := models.Signal{
				ID:          uuid.NewString(),
				Coin:        strings.TrimSpace(coin),
				Type:        st,
				EntryPrice:  entry,
				TargetPrice: target,
				StopLoss:    stop,
				Description: description,
				Risk:        r,
				Status:      models.SignalActive,
				CreatedAt:   time.Now(),
			}
			if err := app.Store.SaveSignal(cmd.Context(), localUserID, signal); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(signal)
			}
			output.Success("Signal logged: %s %s @ %s -> %s",
				signal.Type, signal.Coin,
				utils.FormatUSD(signal.EntryPrice), utils.FormatUSD(signal.TargetPrice))
			output.Dim("ID: %s", signal.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&coin, "coin", "", "coin name (required)")
	cmd.Flags().StringVar(&sigType, "type", "long", "long or short")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (required)")
	cmd.Flags().Float64Var(&target, "target", 0, "target price (required)")
	cmd.Flags().Float64Var(&stop, "stop", 0, "stop loss price")
	cmd.Flags().StringVar(&risk, "risk", "medium", "low, medium or high")
	cmd.Flags().StringVar(&description, "description", "", "signal rationale")
	cmd.MarkFlagRequired("coin")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("target")

	return cmd
}

func newSignalsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <signal-id> <active|completed|cancelled>",
		Short: "Update a signal's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store is not available")
			}

			status := models.SignalStatus(args[1])
			if status != models.SignalActive && status != models.SignalCompleted && status != models.SignalCancelled {
				return apperrors.NewValidationError("status", args[1], "status must be active, completed or cancelled")
			}

			if err := app.Store.UpdateSignalStatus(cmd.Context(), localUserID, args[0], status); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"id": args[0], "status": args[1]})
			}
			output.Success("Signal marked %s", output.StatusTag(args[1]))
			return nil
		},
	}
}

func newSignalsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <signal-id>",
		Short: "Delete a signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store is not available")
			}

			if err := app.Store.DeleteSignal(cmd.Context(), localUserID, args[0]); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("Signal deleted")
			return nil
		},
	}
}
