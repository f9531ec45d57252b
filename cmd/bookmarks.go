package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tutor/internal/model"
	"tutor/internal/pkg/bookmarktools"
	"tutor/internal/service"
)

var useClientStore bool

var bookmarksCmd = &cobra.Command{
	Use:     "bookmarks",
	Aliases: []string{"bm"},
	Short:   "Manage saved conversation bookmarks",
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks, newest first",
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, svc *localServices) error {
		bookmarks, err := svc.bookmarks.List(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(bookmarks)
		}
		printBookmarks(cmd.OutOrStdout(), bookmarks)
		return nil
	}),
}

var bookmarksSaveCmd = &cobra.Command{
	Use:   "save <question> <answer>",
	Short: "Save a question and answer pair",
	Args:  cobra.ExactArgs(2),
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, svc *localServices) error {
		modelName, _ := cmd.Flags().GetString("model")
		result, err := svc.bookmarks.Save(cmd.Context(), &model.Conversation{
			User: &model.Message{Content: args[0], Role: model.RoleUser},
			Assistant: &model.Message{
				Content: args[1],
				Role:    model.RoleAssistant,
				Metadata: &model.Metadata{
					Model:     modelName,
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				},
			},
		})
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), result)
		return nil
	}),
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a bookmark by id",
	Args:  cobra.ExactArgs(1),
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, svc *localServices) error {
		bookmarkID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bookmark id %q", args[0])
		}
		removed, err := svc.bookmarks.Remove(cmd.Context(), bookmarkID)
		if err != nil {
			return err
		}
		if removed {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark %d\n", bookmarkID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "No bookmark with id %d\n", bookmarkID)
		}
		return nil
	}),
}

var bookmarksExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export bookmarks as Markdown or HTML",
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, svc *localServices) error {
		format, _ := cmd.Flags().GetString("format")
		content, _, err := svc.bookmarks.Export(cmd.Context(), format)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" || output == "-" {
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		}
		if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported bookmarks to %s\n", output)
		return nil
	}),
}

var bookmarksMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite stored bookmarks in the current record shape",
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, svc *localServices) error {
		report, err := svc.bookmarks.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Records: %d, kept: %d, dropped: %d\n", report.Total, report.Kept, report.Dropped)
		for _, shape := range []string{"current", "messages", "flat", "unknown"} {
			if n := report.Shapes[shape]; n > 0 {
				fmt.Fprintf(out, "  %-8s %d\n", shape, n)
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(bookmarksCmd)
	bookmarksCmd.AddCommand(bookmarksListCmd, bookmarksSaveCmd, bookmarksRemoveCmd, bookmarksExportCmd, bookmarksMigrateCmd)

	bookmarksCmd.PersistentFlags().BoolVar(&useClientStore, "client", false, "use the terminal client storage instead of the server storage")
	bookmarksListCmd.Flags().Bool("json", false, "print as JSON")
	bookmarksSaveCmd.Flags().String("model", "unknown", "model that produced the answer")
	bookmarksExportCmd.Flags().StringP("format", "f", bookmarktools.FormatMarkdown, "export format (markdown/html)")
	bookmarksExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}

// withBookmarks 打开存储，执行后关闭
func withBookmarks(fn func(cmd *cobra.Command, args []string, svc *localServices) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		svc, err := openLocalServices(cmd.Context(), storageFor(cfg, useClientStore), cfg.Bookmark.Key)
		if err != nil {
			return err
		}
		defer svc.Close()
		return fn(cmd, args, svc)
	}
}

func printBookmarks(w io.Writer, bookmarks []model.Bookmark) {
	if len(bookmarks) == 0 {
		fmt.Fprintln(w, "No bookmarks yet.")
		return
	}
	for i := range bookmarks {
		b := &bookmarks[i]
		meta := b.AssistantMetadata()
		fmt.Fprintf(w, "[%d] %s • %s\n", b.ID, bookmarktools.ModelDisplayName(meta.Model), meta.Timestamp)
		fmt.Fprintf(w, "  Q: %s\n", preview(b.UserContent(), 100))
		fmt.Fprintf(w, "  A: %s\n", preview(b.AssistantContent(), 100))
	}
}

func printOutcome(w io.Writer, result *service.SaveResult) {
	if result.Bookmark != nil {
		fmt.Fprintf(w, "%s (id %d)\n", result.Outcome.Message(), result.Bookmark.ID)
		return
	}
	fmt.Fprintln(w, result.Outcome.Message())
}

func preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
