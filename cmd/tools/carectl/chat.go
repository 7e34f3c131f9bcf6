package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hallikerijaved/CareGpt/internal/model/chat"
	"github.com/hallikerijaved/CareGpt/internal/model/mood"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
)

const chatHelp = `Commands:
  /mood <mood> [note]  log a mood (Happy, Sad, Anxious, Angry, Calm, Tired)
  /moods               show the mood history
  /clear               clear the conversation
  /export [file]       save the conversation (default chat_history.txt)
  /quit                leave`

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot in an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, core, err := loadCore(cmd)
			if err != nil {
				return err
			}

			sessions := sessionService.NewService(core.Pipeline, sessionService.Options{Logger: e.logger})
			s, err := sessions.Create(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Let's chat! Type /quit to exit, /help for commands.")
			return repl(cmd.Context(), sessions, s.ID, cmd.InOrStdin(), out)
		},
	}
}

// repl reads one line per turn until /quit or end of input.
func repl(ctx context.Context, sessions *sessionService.Service, id string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "/") {
			quit, err := runCommand(ctx, sessions, id, line, out)
			if err != nil {
				fmt.Fprintln(out, "!", err)
			}
			if quit {
				return nil
			}
			continue
		}

		ex, err := sessions.SendText(ctx, id, line)
		switch {
		case errors.Is(err, sessionService.ErrEmptyMessage):
			continue
		case err != nil:
			fmt.Fprintln(out, "!", err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", chat.SenderBot.Label(), ex.Bot.Text)
		if ex.SuggestedMood.Found() {
			fmt.Fprintf(out, "  (sounds %s, log it with /mood %s)\n", strings.ToLower(string(ex.SuggestedMood.Mood)), ex.SuggestedMood.Mood)
		}
	}
}

func runCommand(ctx context.Context, sessions *sessionService.Service, id, line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		fmt.Fprintln(out, "Take care.")
		return true, nil

	case "/help":
		fmt.Fprintln(out, chatHelp)

	case "/mood":
		if len(fields) < 2 {
			return false, errors.New("usage: /mood <mood> [note]")
		}
		label, err := mood.Parse(fields[1])
		if err != nil {
			return false, err
		}
		entry, err := sessions.LogMood(ctx, id, label, strings.Join(fields[2:], " "))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Logged %s at %s\n", entry.Display, entry.Timestamp)

	case "/moods":
		entries, err := sessions.MoodHistory(ctx, id)
		if err != nil {
			return false, err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No moods logged yet.")
		}
		for _, entry := range entries {
			fmt.Fprintf(out, "%s  %s  %s\n", entry.Timestamp, entry.Display, entry.Note)
		}

	case "/clear":
		if err := sessions.ClearConversation(ctx, id); err != nil {
			return false, err
		}
		fmt.Fprintln(out, "Conversation cleared.")

	case "/export":
		path := chat.ExportFilename
		if len(fields) > 1 {
			path = fields[1]
		}
		text, err := sessions.ExportConversation(ctx, id)
		if err != nil {
			return false, err
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return false, fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(out, "Saved to %s\n", path)

	default:
		return false, fmt.Errorf("unknown command %s, try /help", fields[0])
	}
	return false, nil
}
