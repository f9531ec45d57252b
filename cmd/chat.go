package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tutor/internal/model"
	"tutor/internal/pkg/bookmarktools"
	"tutor/internal/pkg/chatclient"
	"tutor/internal/pkg/conversation"
	"tutor/internal/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal chat client",
	Long: `Chat with the tutor from the terminal. Messages go to the API server;
bookmarks are kept in the client storage (client.storage).

Commands: /save, /bookmarks, /remove <id>, /models, /model <name>, /quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	flags := chatCmd.Flags()
	flags.String("server", "", "server url (default: port file, then http://localhost:8000)")
	flags.StringP("model", "m", "gpt-3.5-turbo", "model name")

	_ = viper.BindPFlag("client.server_url", flags.Lookup("server"))
	_ = viper.BindPFlag("client.model", flags.Lookup("model"))
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	svc, err := openLocalServices(ctx, &cfg.Client.Storage, cfg.Bookmark.Key)
	if err != nil {
		return err
	}
	defer svc.Close()

	client := chatclient.NewClient(&chatclient.Config{
		ServerURL:  cfg.Client.ServerURL,
		PortFile:   cfg.Server.PortFile,
		Timeout:    cfg.Client.Timeout,
		MaxRetries: 2,
	})
	if err := client.Health(ctx); err != nil {
		log.Warn().Err(err).Str("server", client.BaseURL()).Msg("server is not reachable yet")
	}

	session := newChatSession(client, svc.bookmarks, cfg.Client.Model, cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s using %s. Type /quit to exit.\n", client.BaseURL(), session.model)
	return session.Run(ctx, cmd.InOrStdin())
}

// chatSession 终端会话：发送消息、跟踪配对、管理收藏
type chatSession struct {
	client    *chatclient.Client
	bookmarks *service.BookmarkService
	tracker   *conversation.Tracker
	model     string
	out       io.Writer
}

func newChatSession(client *chatclient.Client, bookmarks *service.BookmarkService, modelName string, out io.Writer) *chatSession {
	return &chatSession{
		client:    client,
		bookmarks: bookmarks,
		tracker:   conversation.NewTracker(),
		model:     modelName,
		out:       out,
	}
}

// Run 逐行读取输入直到 /quit 或 EOF
func (s *chatSession) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if quit := s.handleLine(ctx, scanner.Text()); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *chatSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.send(ctx, line)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "/quit", "/exit":
		return true
	case "/save":
		s.save(ctx)
	case "/bookmarks":
		s.list(ctx)
	case "/remove":
		s.remove(ctx, arg)
	case "/models":
		s.models(ctx)
	case "/model":
		if arg == "" {
			fmt.Fprintf(s.out, "Current model: %s\n", s.model)
		} else {
			s.model = arg
			fmt.Fprintf(s.out, "Model set to %s\n", bookmarktools.ModelDisplayName(arg))
		}
	default:
		fmt.Fprintf(s.out, "Unknown command %s\n", command)
	}
	return false
}

func (s *chatSession) send(ctx context.Context, content string) {
	if err := s.tracker.RecordMessage(content, model.RoleUser, nil); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	resp, err := s.client.SendUserMessage(ctx, content, s.model)
	if err != nil {
		_ = s.tracker.RecordMessage(err.Error(), model.RoleError, nil)
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	if err := s.tracker.RecordMessage(resp.Content, model.RoleAssistant, resp.Metadata); err != nil {
		log.Warn().Err(err).Msg("failed to record assistant message")
	}

	label := s.model
	if resp.Metadata != nil {
		label = resp.Metadata.Model
	}
	fmt.Fprintf(s.out, "%s: %s\n", bookmarktools.ModelDisplayName(label), resp.Content)
}

func (s *chatSession) save(ctx context.Context) {
	result, err := s.bookmarks.SaveFrom(ctx, s.tracker)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	printOutcome(s.out, result)
}

func (s *chatSession) list(ctx context.Context) {
	bookmarks, err := s.bookmarks.List(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	printBookmarks(s.out, bookmarks)
}

func (s *chatSession) remove(ctx context.Context, arg string) {
	bookmarkID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintln(s.out, "usage: /remove <id>")
		return
	}
	removed, err := s.bookmarks.Remove(ctx, bookmarkID)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	if removed {
		fmt.Fprintf(s.out, "Removed bookmark %d\n", bookmarkID)
	} else {
		fmt.Fprintf(s.out, "No bookmark with id %d\n", bookmarkID)
	}
}

func (s *chatSession) models(ctx context.Context) {
	resp, err := s.client.Models(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	for _, m := range resp.Models {
		marker := " "
		if m == s.model {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %s (%s)\n", marker, bookmarktools.ModelDisplayName(m), m)
	}
}
