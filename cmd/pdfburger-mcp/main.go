// Command pdfburger-mcp is an MCP (Model Context Protocol) server that
// exposes PDF collection and merging to AI assistants over stdio.
//
// # Installation
//
//	go install github.com/lvillar/pdfburger/cmd/pdfburger-mcp@latest
//
// # Client configuration
//
//	{
//	  "mcpServers": {
//	    "pdfburger": {
//	      "command": "pdfburger-mcp",
//	      "args": ["--codec", "gofpdi"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - collect_pdfs: list the PDFs a set of files and directories resolves to
//   - merge_pdfs: collect and merge into one output file
//   - pdf_info: version, page count, metadata and page sizes
//
// # Available Resources
//
//   - pdf://pages?path=... : page count and sizes
//   - pdf://metadata?path=... : version and document information
//   - pdf://content?path=...&page=N : decoded content of one page
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lvillar/pdfburger"
	"github.com/lvillar/pdfburger/codec"
	"github.com/lvillar/pdfburger/mcp"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "pdfburger-mcp",
		Usage:   "MCP stdio server for collecting and merging PDFs",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "codec",
				Value: codec.Default,
				Usage: fmt.Sprintf("PDF codec %v", codec.Names()),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log requests to stderr",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pdfburger-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	// stdout carries the protocol; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cd, err := codec.ByName(c.String("codec"))
	if err != nil {
		return err
	}

	server := mcp.NewServer()
	server.SetLogger(logger)
	server.SetVersion(version)
	mcp.RegisterDefaultTools(server, pdfburger.New(
		pdfburger.WithCodec(cd),
		pdfburger.WithLogger(logger),
	))
	mcp.RegisterDefaultResources(server)

	return server.Run()
}
