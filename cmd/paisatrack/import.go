package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paisatrack/paisatrack/internal/importer"
	"github.com/paisatrack/paisatrack/internal/model"
)

func importCmd() *cobra.Command {
	var pdfPassword string
	var noWait bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank statement file",
		Long: `Import parses a bank statement export, classifies every transaction,
and leaves the session in review. Use "rows" to inspect the result and
"confirm-all" to post rows as expenses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc, err := buildService(store, pdfPassword)
			if err != nil {
				return err
			}

			userID := viper.GetString("user")
			sessionID, err := svc.CreateSession(ctx, userID, importer.UploadedFile{
				Name: filepath.Base(args[0]),
				Data: data,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Session %s created\n", sessionID)
			if noWait {
				return nil
			}

			return waitForSession(cmd, svc, sessionID, userID)
		},
	}

	cmd.Flags().StringVar(&pdfPassword, "pdf-password", "", "password for protected PDF statements")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "return immediately instead of waiting for classification")
	return cmd
}

// waitForSession polls the session until it leaves PARSING, rendering
// classification progress.
func waitForSession(cmd *cobra.Command, svc *importer.Service, sessionID, userID string) error {
	ctx := cmd.Context()

	var bar *progressbar.ProgressBar

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}

		session, err := svc.GetSession(ctx, sessionID, userID)
		if err != nil {
			return err
		}

		if bar == nil && session.ProgressTotal > 0 {
			bar = progressbar.NewOptions(session.ProgressTotal,
				progressbar.OptionSetWriter(cmd.OutOrStdout()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Classifying transactions..."),
			)
		}
		if bar != nil {
			_ = bar.Set(session.ProgressDone)
		}

		switch session.Status {
		case model.SessionParsing:
			continue
		case model.SessionFailed:
			if bar != nil {
				_ = bar.Clear()
			}
			return errors.New("import failed: " + session.Error)
		default:
			if bar != nil {
				_ = bar.Finish()
			}
			fmt.Printf("\nImported %d rows (%d auto-classified, %d for review)\n",
				session.RowCount, session.AutoCount, session.ReviewCount)
			fmt.Printf("Detected format: %s\n", session.BankFormat)
			return nil
		}
	}
}
