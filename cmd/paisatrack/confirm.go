package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/importer"
	"github.com/paisatrack/paisatrack/internal/model"
)

func confirmCmd() *cobra.Command {
	var (
		skip          bool
		amount        string
		date          string
		direction     string
		category      string
		platform      string
		paymentMethod string
		notes         string
		tags          []string
	)

	cmd := &cobra.Command{
		Use:   "confirm <row-id>",
		Short: "Confirm or skip a single row",
		Long: `Confirm posts a pending row as an expense record. Field flags override
the classified values before posting. With --skip the row is marked
skipped and nothing is posted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			input := importer.ConfirmRowInput{Action: importer.ActionConfirm}
			if skip {
				input.Action = importer.ActionSkip
			}

			if cmd.Flags().Changed("amount") {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("%w: amount %q", common.ErrInvalidInput, amount)
				}
				input.Fields.Amount = &d
			}
			if cmd.Flags().Changed("date") {
				t, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("%w: date %q (want YYYY-MM-DD)", common.ErrInvalidInput, date)
				}
				input.Fields.Date = &t
			}
			if cmd.Flags().Changed("direction") {
				d := model.Direction(strings.ToUpper(direction))
				if d != model.DirectionExpense && d != model.DirectionInflow {
					return fmt.Errorf("%w: direction %q", common.ErrInvalidInput, direction)
				}
				input.Fields.Direction = &d
			}
			if cmd.Flags().Changed("category") {
				input.Fields.Category = &category
			}
			if cmd.Flags().Changed("platform") {
				input.Fields.Platform = &platform
			}
			if cmd.Flags().Changed("payment-method") {
				input.Fields.PaymentMethod = &paymentMethod
			}
			if cmd.Flags().Changed("notes") {
				input.Fields.Notes = &notes
			}
			if cmd.Flags().Changed("tags") {
				input.Fields.Tags = &tags
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc, err := buildService(store, "")
			if err != nil {
				return err
			}

			if err := svc.ConfirmRow(ctx, args[0], input, viper.GetString("user")); err != nil {
				return err
			}

			if skip {
				fmt.Printf("Row %s skipped\n", args[0])
			} else {
				fmt.Printf("Row %s confirmed\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skip, "skip", false, "skip the row instead of confirming it")
	cmd.Flags().StringVar(&amount, "amount", "", "override the amount")
	cmd.Flags().StringVar(&date, "date", "", "override the date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&direction, "direction", "", "override the direction (EXPENSE, INFLOW)")
	cmd.Flags().StringVar(&category, "category", "", "override the category")
	cmd.Flags().StringVar(&platform, "platform", "", "override the platform")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "override the payment method")
	cmd.Flags().StringVar(&notes, "notes", "", "override the notes")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "override the tags")
	return cmd
}

func confirmAllCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "confirm-all <session-id>",
		Short: "Bulk-confirm pending rows and complete the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var sc importer.Scope
			switch strings.ToUpper(scope) {
			case "AUTO":
				sc = importer.ScopeAuto
			case "ALL":
				sc = importer.ScopeAll
			default:
				return fmt.Errorf("%w: scope %q (want AUTO or ALL)", common.ErrInvalidInput, scope)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc, err := buildService(store, "")
			if err != nil {
				return err
			}

			result, err := svc.ConfirmAll(ctx, args[0], sc, viper.GetString("user"))
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d expenses\n", result.Imported)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "AUTO", "which pending rows to confirm (AUTO, ALL)")
	return cmd
}
