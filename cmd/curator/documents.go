package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/extract"
	"github.com/poiesic/curator/knowledge"
	"github.com/urfave/cli/v2"
)

const previewLength = 72

func documentsCommand() *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:  "json",
		Usage: "Print JSON instead of a table",
	}
	return &cli.Command{
		Name:    "documents",
		Aliases: []string{"docs"},
		Usage:   "Inspect and edit the knowledge base",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stored documents",
				Action: listDocumentsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "offset", Usage: "Documents to skip"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum documents to list", Value: 50},
					jsonFlag,
				},
			},
			{
				Name:      "get",
				Usage:     "Print a document",
				ArgsUsage: "<id>",
				Action:    getDocumentCommand,
				Flags:     []cli.Flag{jsonFlag},
			},
			{
				Name:      "add",
				Usage:     "Add a document from text arguments or a .txt/.md file",
				ArgsUsage: "[text...]",
				Action:    addDocumentCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read content from a file"},
					&cli.StringFlag{Name: "category", Usage: "Category to record"},
					&cli.StringFlag{Name: "source-link", Usage: "Link to the original source"},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a document",
				ArgsUsage: "<id>",
				Action:    deleteDocumentCommand,
			},
			{
				Name:      "query",
				Usage:     "Find the documents most relevant to a question",
				ArgsUsage: "<text...>",
				Action:    queryDocumentsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "Number of results", Value: 5},
					jsonFlag,
				},
			},
			{
				Name:   "stats",
				Usage:  "Count documents per category",
				Action: statsCommand,
				Flags:  []cli.Flag{jsonFlag},
			},
		},
	}
}

func listDocumentsCommand(c *cli.Context) error {
	return withCurator(c, func(ctx context.Context, kb *knowledge.Base) error {
		docs, err := kb.ListDocuments(ctx, c.Int("offset"), c.Int("limit"))
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(c.App.Writer, docs)
		}

		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tCONTENT")
		for _, doc := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", doc.ID, doc.Category(), preview(doc.Content))
		}
		return w.Flush()
	})
}

func getDocumentCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	return withCurator(c, func(ctx context.Context, kb *knowledge.Base) error {
		doc, err := kb.GetDocument(ctx, id)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(c.App.Writer, doc)
		}

		fmt.Fprintf(c.App.Writer, "ID: %s\n", doc.ID)
		for key, value := range doc.Metadata {
			fmt.Fprintf(c.App.Writer, "%s: %s\n", key, value)
		}
		fmt.Fprintf(c.App.Writer, "\n%s\n", doc.Content)
		return nil
	})
}

func addDocumentCommand(c *cli.Context) error {
	content := strings.Join(c.Args().Slice(), " ")
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content, err = extract.ExtractFile(filepath.Base(path), data)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(content) == "" {
		return core.ErrEmptyContent
	}

	meta := map[string]string{}
	if category := c.String("category"); category != "" {
		meta[core.MetaCategory] = category
	}
	if link := c.String("source-link"); link != "" {
		meta[core.MetaSourceLink] = link
	}

	return withCurator(c, func(ctx context.Context, kb *knowledge.Base) error {
		id, err := kb.CreateDocument(ctx, content, meta)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, id)
		return nil
	})
}

func deleteDocumentCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	return withCurator(c, func(ctx context.Context, kb *knowledge.Base) error {
		if err := kb.DeleteDocument(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Deleted %s\n", id)
		return nil
	})
}

func queryDocumentsCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	return withCurator(c, func(ctx context.Context, kb *knowledge.Base) error {
		results, err := kb.Query(ctx, text, c.Int("n"))
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(c.App.Writer, results)
		}

		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tID\tCATEGORY\tCONTENT")
		for _, r := range results {
			marker := ""
			if r.Verbatim {
				marker = "*"
			}
			fmt.Fprintf(w, "%.3f%s\t%s\t%s\t%s\n", r.Score, marker, r.Document.ID, r.Document.Category(), preview(r.Document.Content))
		}
		return w.Flush()
	})
}

func statsCommand(c *cli.Context) error {
	return withCurator(c, func(ctx context.Context, kb *knowledge.Base) error {
		stats, err := kb.Stats(ctx)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(c.App.Writer, stats)
		}

		fmt.Fprintf(c.App.Writer, "Documents: %d\n", stats.Total)
		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		for _, category := range slices.Sorted(maps.Keys(stats.Categories)) {
			fmt.Fprintf(w, "  %s\t%d\n", category, stats.Categories[category])
		}
		return w.Flush()
	})
}

// withCurator opens the configured knowledge base for the duration of fn.
func withCurator(c *cli.Context, fn func(ctx context.Context, kb *knowledge.Base) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cur, err := openCurator(cfg)
	if err != nil {
		return err
	}
	defer cur.Close()

	return fn(c.Context, cur.Knowledge())
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
