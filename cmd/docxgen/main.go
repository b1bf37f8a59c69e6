// docxgen builds Word documents from rich-text deltas and images.
//
// Usage:
//
//	docxgen [-config file.yaml] <command> [arguments]
//
// Commands:
//
//	version                      Show version information
//	build [-o out.docx] <script> Build a document from a YAML build script
//	inspect <file.docx>          List the parts and paragraphs of a package
//	serve [-addr :8080]          Run the HTTP API
//	draft add <title> <delta>    Store a draft ("-" reads the delta from stdin)
//	draft list                   List stored drafts
//	draft show <id>              Print a draft
//	draft rm <id>                Delete a draft
//	draft render <id> <out>      Render a draft to .docx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/benjaminschreck/go-docxgen/pkg/docxgen"
	"github.com/benjaminschreck/go-docxgen/pkg/server"
	"github.com/benjaminschreck/go-docxgen/pkg/store"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: docxgen [-config file.yaml] <command> [arguments]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	fmt.Fprintln(os.Stderr, "  version                       Show version information")
	fmt.Fprintln(os.Stderr, "  build [-o out.docx] <script>  Build a document from a YAML build script")
	fmt.Fprintln(os.Stderr, "  inspect <file.docx>           List the parts and paragraphs of a package")
	fmt.Fprintln(os.Stderr, "  serve [-addr :8080]           Run the HTTP API")
	fmt.Fprintln(os.Stderr, "  draft add|list|show|rm|render Manage stored drafts")
}

func main() {
	configPath := flag.String("config", os.Getenv("DOCXGEN_CONFIG"), "Path to YAML config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	command := args[0]

	switch command {
	case "version":
		fmt.Printf("docxgen version %s\n", version)
	case "build":
		err = runBuild(config, args[1:])
	case "inspect":
		err = runInspect(args[1:])
	case "serve":
		err = runServe(config, args[1:])
	case "draft":
		err = runDraft(config, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*docxgen.Config, error) {
	config := docxgen.ConfigFromEnvironment()
	if path != "" {
		var err error
		config, err = docxgen.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
	}
	docxgen.SetGlobalConfig(config)
	docxgen.InitLogging()
	return config, nil
}

func runBuild(config *docxgen.Config, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output path (overrides the script's output)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: docxgen build [-o out.docx] <script>")
	}

	script, err := docxgen.LoadScript(fs.Arg(0))
	if err != nil {
		return err
	}

	outPath := *output
	if outPath == "" {
		outPath = script.Output
	}
	if outPath == "" {
		return errors.New("no output path: set output in the script or pass -o")
	}

	b := docxgen.NewBuilderWithConfig(config)
	if err := script.Apply(b); err != nil {
		// Unreadable images abort; bad blocks are skipped
		if docxgen.IsIOError(err) {
			return err
		}
		var multi *docxgen.MultiError
		if errors.As(err, &multi) {
			for _, e := range multi.Errors() {
				docxgen.Warn("skipped %v", e)
			}
		} else {
			docxgen.Warn("skipped %v", err)
		}
	}

	if err := b.Generate(outPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %d paragraphs to %s\n", b.Document().Len(), outPath)
	return nil
}

func runInspect(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: docxgen inspect <file.docx>")
	}

	dr, err := docxgen.DocxReaderFromFile(args[0])
	if err != nil {
		return err
	}

	fmt.Println("Parts:")
	for _, name := range dr.ListParts() {
		fmt.Printf("  %s\n", name)
	}

	doc, err := dr.Document()
	if err != nil {
		return err
	}

	fmt.Printf("\nParagraphs: %d (images: %d)\n", doc.Len(), doc.ImageCount())
	for i, para := range doc.Paragraphs() {
		for _, run := range para.Runs {
			if img, ok := run.(*docxgen.ImageRun); ok {
				fmt.Printf("  %3d  [image %dx%d, %d bytes]\n", i, img.Width, img.Height, len(img.Data))
			}
		}
		if text := para.Text(); text != "" {
			fmt.Printf("  %3d  %q\n", i, text)
		}
	}
	return nil
}

func runServe(config *docxgen.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", config.ListenAddr, "Listen address")
	dbPath := fs.String("db", config.DBPath, "SQLite database for drafts")
	fs.Parse(args)

	drafts, err := store.New(*dbPath)
	if err != nil {
		return err
	}
	defer drafts.Close()

	srv := &http.Server{
		Addr:         *addr,
		Handler:      server.New(config, drafts).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		docxgen.WithField("addr", *addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	docxgen.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	docxgen.Info("server stopped")
	return nil
}

func runDraft(config *docxgen.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: docxgen draft add|list|show|rm|render")
	}

	drafts, err := store.New(config.DBPath)
	if err != nil {
		return err
	}
	defer drafts.Close()

	ctx := context.Background()
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		if len(rest) != 2 {
			return errors.New("usage: docxgen draft add <title> <delta|->")
		}
		content := rest[1]
		if content == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			content = strings.TrimSpace(string(data))
		}
		if _, err := docxgen.ParseDelta(content); err != nil {
			return err
		}
		id, err := drafts.Insert(ctx, rest[0], content)
		if err != nil {
			return err
		}
		fmt.Printf("Stored draft %d\n", id)

	case "list":
		list, err := drafts.List(ctx)
		if err != nil {
			return err
		}
		for _, d := range list {
			fmt.Printf("%5d  %-40s  %s\n", d.ID, d.Title, d.UpdatedAt)
		}

	case "show":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		d, err := drafts.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Title:   %s\nCreated: %s\nUpdated: %s\n\n%s\n", d.Title, d.CreatedAt, d.UpdatedAt, d.Content)

	case "rm":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := drafts.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted draft %d\n", id)

	case "render":
		if len(rest) != 2 {
			return errors.New("usage: docxgen draft render <id> <out.docx>")
		}
		id, err := parseID(rest[:1])
		if err != nil {
			return err
		}
		d, err := drafts.Get(ctx, id)
		if err != nil {
			return err
		}
		b := docxgen.NewBuilderWithConfig(config)
		b.SetTitle(d.Title)
		if err := b.AddText(d.Content); err != nil {
			return err
		}
		if err := b.Generate(rest[1]); err != nil {
			return err
		}
		fmt.Printf("Rendered draft %d to %s\n", id, rest[1])

	default:
		return fmt.Errorf("unknown draft command: %s", sub)
	}
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a single draft id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid draft id %q", args[0])
	}
	return id, nil
}
