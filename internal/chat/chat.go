// Package chat answers physics questions with retrieved course material.
// It glues retrieval and generation together: fetch context for the
// question, fold it into the prompt with the conversation history, and
// return the model's answer with source attributions.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/askphys/askphys/internal/log"
	"github.com/askphys/askphys/internal/retrieve"
)

// ErrEmptyQuestion indicates the question is blank after trimming.
var ErrEmptyQuestion = errors.New("question is empty")

// systemPrompt frames the assistant as a physics tutor grounded in the
// retrieved course material.
const systemPrompt = `You are a patient university physics professor. Answer the student's question using the provided context from the course material whenever it is relevant. Explain the underlying physics step by step, use SI units, and show the key equations. If the context does not cover the question, say so and answer from general physics knowledge. Keep answers focused and do not invent citations.`

// Conversation roles accepted in Turn.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Answer is the tutor's reply.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources lists the documents the supporting context came from.
	// Empty when the answer was produced without retrieved context.
	Sources []string `json:"sources"`
}

// Retriever fetches corpus context for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) (retrieve.Context, error)
}

// Generator produces a model response for a system prompt and message
// sequence. Satisfied by GenkitGenerator in production and by canned
// mocks in tests.
type Generator interface {
	Generate(ctx context.Context, system string, messages []*ai.Message) (string, error)
}

// GenkitGenerator adapts a Genkit instance and model reference to the
// Generator interface.
type GenkitGenerator struct {
	G     *genkit.Genkit
	Model string
}

func (g GenkitGenerator) Generate(ctx context.Context, system string, messages []*ai.Message) (string, error) {
	resp, err := genkit.Generate(ctx, g.G,
		ai.WithModelName(g.Model),
		ai.WithSystem(system),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Tutor answers questions. Safe for concurrent use when its Retriever
// and Generator are.
type Tutor struct {
	retriever Retriever
	generator Generator
	logger    log.Logger
}

// New creates a Tutor.
func New(retriever Retriever, generator Generator, logger log.Logger) *Tutor {
	return &Tutor{retriever: retriever, generator: generator, logger: logger}
}

// Ask answers question given the prior conversation history.
//
// When the vector store is unreachable the tutor degrades instead of
// failing: it answers from general knowledge with no sources attached.
func (t *Tutor) Ask(ctx context.Context, question string, history []Turn) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	rc, err := t.retriever.Retrieve(ctx, question)
	if err != nil {
		if !errors.Is(err, retrieve.ErrUnavailable) {
			return Answer{}, fmt.Errorf("retrieving context: %w", err)
		}
		t.logger.Warn("retrieval unavailable, answering without context", "error", err)
		rc = retrieve.Context{Text: retrieve.NoContext}
	}

	messages := historyMessages(history)
	messages = append(messages, ai.NewUserMessage(ai.NewTextPart(
		fmt.Sprintf("Context: %s\n\nQuestion: %s", rc.Text, question))))

	text, err := t.generator.Generate(ctx, systemPrompt, messages)
	if err != nil {
		return Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	t.logger.Debug("answered question",
		"history_turns", len(history), "sources", len(rc.Sources))
	return Answer{Text: text, Sources: rc.Sources}, nil
}

// historyMessages maps conversation turns onto model messages.
// Assistant turns become model messages; everything else is treated as
// the user speaking. Blank turns are dropped.
func historyMessages(history []Turn) []*ai.Message {
	messages := make([]*ai.Message, 0, len(history)+1)
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		if turn.Role == RoleAssistant || turn.Role == "model" {
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(content)))
			continue
		}
		messages = append(messages, ai.NewUserMessage(ai.NewTextPart(content)))
	}
	return messages
}
