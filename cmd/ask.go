package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/askphys/askphys/internal/chat"
	"github.com/askphys/askphys/internal/log"
)

// runAsk answers a single question on the terminal.
func runAsk(logger log.Logger, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("usage: askphys ask <question>")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.close()

	answer, err := a.tutor().Ask(ctx, question, nil)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuestion) {
			return errors.New("usage: askphys ask <question>")
		}
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Printf("Sources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}
