// Package assistant is the AI waiter and concierge. It only reads the menu it
// is handed and always answers with something printable.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/domain"
)

const (
	MsgNoKey      = "AI features require an API Key."
	MsgEmpty      = "AI could not generate a response."
	MsgConnection = "Error connecting to Gemini AI."

	waiterPrompt    = "You are a helpful and charismatic restaurant waiter AI. Recommend dishes that match the customer's mood and preferences."
	conciergePrompt = "You are the digital concierge for %s. Help users with booking questions. Be polite and concise."
)

type Assistant struct {
	gen         Generator
	hasKey      bool
	restaurant  string
	temperature float64
	timeout     time.Duration
	log         *logger.Logger
}

type Option func(*Assistant)

func WithRestaurant(name string) Option { return func(a *Assistant) { a.restaurant = name } }

func WithTemperature(t float64) Option { return func(a *Assistant) { a.temperature = t } }

func WithTimeout(d time.Duration) Option { return func(a *Assistant) { a.timeout = d } }

func WithLogger(lg *logger.Logger) Option { return func(a *Assistant) { a.log = lg } }

// New wraps gen. With an empty apiKey every request answers MsgNoKey without
// calling gen.
func New(gen Generator, apiKey string, opts ...Option) *Assistant {
	a := &Assistant{
		gen:         gen,
		hasKey:      apiKey != "" && gen != nil,
		restaurant:  "Gourmet Kitchen",
		temperature: 0.7,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assistant) Enabled() bool { return a.hasKey }

type dishHint struct {
	Name  string `json:"name"`
	Desc  string `json:"desc"`
	Price string `json:"price"`
}

// SuggestDishes picks three dishes from menu for the guest's preferences.
func (a *Assistant) SuggestDishes(ctx context.Context, preferences string, menu []domain.MenuItem) string {
	hints := make([]dishHint, 0, len(menu))
	for _, m := range menu {
		hints = append(hints, dishHint{Name: m.Name, Desc: m.Description, Price: m.Price.StringFixed(2)})
	}
	listing, _ := json.Marshal(hints)
	temp := a.temperature
	return a.ask(ctx, "suggest_dishes", Prompt{
		System:      waiterPrompt,
		Text:        fmt.Sprintf("Based on these user preferences: %q, suggest 3 items from our menu: %s. Explain why for each.", preferences, listing),
		Temperature: &temp,
	})
}

func (a *Assistant) ReservationGuide(ctx context.Context, query string) string {
	return a.ask(ctx, "reservation_guide", Prompt{
		System: fmt.Sprintf(conciergePrompt, a.restaurant),
		Text:   query,
	})
}

func (a *Assistant) ask(ctx context.Context, action string, p Prompt) string {
	if !a.hasKey {
		return MsgNoKey
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.gen.Generate(ctx, p)
	if err != nil {
		a.log.Error("assistant_request_failed", err, map[string]any{"kind": action})
		return MsgConnection
	}
	a.log.Debug("assistant_replied", map[string]any{"kind": action, "took_ms": time.Since(start).Milliseconds()})
	if text == "" {
		return MsgEmpty
	}
	return text
}

// Kind says which question a Reply answers.
type Kind int

const (
	KindSuggestion Kind = iota
	KindReservation
)

// Reply is the message an Ask command delivers to the console.
type Reply struct {
	Kind Kind
	Text string
}

// Ask runs the question off the UI goroutine and delivers a Reply.
func (a *Assistant) Ask(kind Kind, question string, menu []domain.MenuItem) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if kind == KindReservation {
			return Reply{Kind: kind, Text: a.ReservationGuide(ctx, question)}
		}
		return Reply{Kind: kind, Text: a.SuggestDishes(ctx, question, menu)}
	}
}
