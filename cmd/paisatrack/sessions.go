package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [session-id]",
		Short: "Show import session status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc, err := buildService(store, "")
			if err != nil {
				return err
			}
			userID := viper.GetString("user")

			if len(args) == 1 {
				session, err := svc.GetSession(ctx, args[0], userID)
				if err != nil {
					return err
				}
				fmt.Printf("Session:  %s\n", session.ID)
				fmt.Printf("File:     %s (%s)\n", session.SourceFile, session.BankFormat)
				fmt.Printf("Status:   %s\n", session.Status)
				fmt.Printf("Rows:     %d (%d auto, %d review)\n", session.RowCount, session.AutoCount, session.ReviewCount)
				fmt.Printf("Progress: %d/%d\n", session.ProgressDone, session.ProgressTotal)
				if session.Error != "" {
					fmt.Printf("Error:    %s\n", session.Error)
				}
				return nil
			}

			sessions, err := svc.ListSessions(ctx, userID)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No import sessions")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFILE\tSTATUS\tROWS\tCREATED")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					s.ID, s.SourceFile, s.Status, s.RowCount, formatAge(s.CreatedAt))
			}
			return w.Flush()
		},
	}
}

func rowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rows <session-id>",
		Short: "List a session's rows for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc, err := buildService(store, "")
			if err != nil {
				return err
			}

			rows, err := svc.GetRows(ctx, args[0], viper.GetString("user"))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tTYPE\tCATEGORY\tBY\tSTATUS\tNARRATION")
			for _, r := range rows {
				date, amount := "", ""
				if r.Date != nil {
					date = r.Date.Format("2006-01-02")
				}
				if r.Amount != nil {
					amount = r.Amount.StringFixed(2)
				}
				category := r.Category
				if category == "" {
					category = "-"
				}
				narration := r.Narration
				if len(narration) > 48 {
					narration = narration[:45] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, date, amount, r.Direction, category, r.ClassifiedBy, r.Status, narration)
			}
			return w.Flush()
		},
	}
}
