package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"docchat/internal/app"
	"docchat/internal/tui"
)

const version = "1.0.0"

var (
	flagServer   string
	flagMock     bool
	flagDocument string
	flagFile     string
)

func applyEnvOverrides(cfg *app.Config) {
	if v := strings.TrimSpace(os.Getenv("DOCCHAT_SERVER_URL")); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCCHAT_DOCUMENT_TYPE")); v != "" {
		cfg.DocumentType = v
	}
}

func loadApplication(cmd *cobra.Command) *app.Application {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read config: %v\n", err)
	}
	applyEnvOverrides(&cfg)
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}
	return app.NewApplication(cfg, flagMock)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

// resolveDocument returns the document id for a one-shot command, uploading
// --file first when given.
func resolveDocument(ctx context.Context, application *app.Application) (string, error) {
	if flagFile != "" {
		doc, err := application.Upload(ctx, flagFile)
		if err != nil {
			return "", err
		}
		color.New(color.Faint).Printf("uploaded %s (%d chunks)\n", doc.Filename, doc.TotalChunks)
		return doc.ID, nil
	}
	if flagDocument != "" {
		return flagDocument, nil
	}
	return "", fmt.Errorf("no document: pass --file to upload one or --document with a known id")
}

func printResult(res app.QueryResult) {
	badge := color.New(color.FgCyan, color.Bold)
	switch res.TaskType {
	case app.TaskCompliance:
		badge = color.New(color.FgYellow, color.Bold)
	case app.TaskAnalysis:
		badge = color.New(color.FgGreen, color.Bold)
	}
	badge.Printf("[%s]\n", res.TaskType)
	fmt.Println(res.Answer)

	if len(res.Sections) > 0 {
		faint := color.New(color.Faint)
		faint.Printf("\nsources (%d):\n", len(res.Sections))
		for _, s := range res.Sections {
			body := strings.TrimSpace(s.Body())
			if len(body) > 160 {
				body = body[:160] + "…"
			}
			if s.Score > 0 {
				faint.Printf("  - %s (%.2f)\n", body, s.Score)
			} else {
				faint.Printf("  - %s\n", body)
			}
		}
	}
}

func main() {
	root := &cobra.Command{
		Use:     "docchat",
		Short:   "Terminal client for the document chat backend",
		Long:    "docchat is a terminal client for a document question-answering backend.\n\nRun without arguments for the interactive TUI, or use the one-shot subcommands for scripting.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application := loadApplication(cmd)
			p := tea.NewProgram(tui.New(application), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
	root.PersistentFlags().StringVar(&flagServer, "server", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVar(&flagMock, "mock", false, "run against a canned in-process backend")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot question about a document",
		Long:  "Ask a single question without opening the TUI.\n\nExamples:\n  - docchat ask --file policy.pdf \"Is this GDPR compliant?\"\n  - docchat ask --document 4f2c... \"What are my results?\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			application := loadApplication(cmd)
			documentID, err := resolveDocument(ctx, application)
			if err != nil {
				return err
			}
			res, err := application.Client.Query(ctx, args[0], documentID, application.Config.DocumentType)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
	askCmd.Flags().StringVar(&flagFile, "file", "", "document to upload before asking")
	askCmd.Flags().StringVar(&flagDocument, "document", "", "id of an already uploaded document")
	root.AddCommand(askCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a comprehensive analysis of a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			application := loadApplication(cmd)
			documentID, err := resolveDocument(ctx, application)
			if err != nil {
				return err
			}
			res, err := application.Client.Analyze(ctx, documentID)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
	analyzeCmd.Flags().StringVar(&flagFile, "file", "", "document to upload before analyzing")
	analyzeCmd.Flags().StringVar(&flagDocument, "document", "", "id of an already uploaded document")
	root.AddCommand(analyzeCmd)

	uploadCmd := &cobra.Command{
		Use:   "upload [path]",
		Short: "Upload a PDF, DOCX or TXT document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			application := loadApplication(cmd)
			doc, err := application.Upload(ctx, args[0])
			if err != nil {
				return err
			}
			color.New(color.FgGreen, color.Bold).Printf("uploaded %s\n", doc.Filename)
			fmt.Printf("document id: %s\n", doc.ID)
			if doc.TotalChunks > 0 {
				fmt.Printf("chunks: %d, characters: %d\n", doc.TotalChunks, doc.TotalCharacters)
			}
			if doc.Note != "" {
				color.New(color.FgYellow).Println(doc.Note)
			}
			return nil
		},
	}
	root.AddCommand(uploadCmd)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			application := loadApplication(cmd)
			if err := application.Client.Health(ctx); err != nil {
				color.New(color.FgRed, color.Bold).Printf("backend unreachable: %v\n", err)
				return err
			}
			color.New(color.FgGreen, color.Bold).Println("ok")
			return nil
		},
	}
	root.AddCommand(healthCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
