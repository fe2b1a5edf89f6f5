package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	chatapp "github.com/pcreem/silver-ESG/internal/chat/app"
	"github.com/pcreem/silver-ESG/internal/chat/domain"
)

// cmdChat runs the interactive assistant loop. Replies stream to the terminal
// as chunks arrive; Ctrl-C or "exit" leaves the loop.
func (a *app) cmdChat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	profileID := fs.String("profile", "", "recipient profile the assistant should consider")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.session.IsAuthenticated() {
		return chatapp.ErrNotAuthenticated
	}

	// Long-lived interactive session: keep the token fresh in the background.
	go a.provider.AutoRefresh(ctx)

	for _, m := range a.chat.Messages() {
		printChatMessage(m)
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")

		lines := make(chan string, 1)
		go func() {
			if sc.Scan() {
				lines <- sc.Text()
			} else {
				close(lines)
			}
		}()

		var text string
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
			text = strings.TrimSpace(line)
		}

		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return nil
		}

		fmt.Print("assistant> ")
		_, err := a.chat.Send(ctx, text, *profileID, func(chunk string) {
			fmt.Print(chunk)
		})
		fmt.Println()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// The conversation already recorded an assistant-voiced error;
			// show it and keep the loop alive.
			if msgs := a.chat.Messages(); len(msgs) > 0 && msgs[len(msgs)-1].Err {
				fmt.Println(msgs[len(msgs)-1].Content)
			}
		}
	}
}

func printChatMessage(m domain.Message) {
	switch m.Role {
	case domain.RoleUser:
		fmt.Printf("you> %s\n", m.Content)
	default:
		fmt.Printf("assistant> %s\n", m.Content)
	}
}
