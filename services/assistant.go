package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/atlaslearn/atlas/backend/evaluator"
	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/upstream"
)

const (
	AssistantWarning = "Using the offline tutor because the AI model is unavailable."

	historyTurns = 10
)

// Fixed assistant phrases. Their speech is cached on disk.
const (
	GreetingPhrase = "Hi! I'm Atlas AI. Ask me anything about your studies."
	ClarifyPhrase  = "Sorry, I didn't catch that. Could you please repeat your question?"
)

// AssistantPhrases lists the fixed phrases worth caching as audio.
var AssistantPhrases = []string{GreetingPhrase, ClarifyPhrase}

// Reply is one assistant answer.
type Reply struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Assistant answers student questions with the configured model, or the
// offline responder when there is none.
type Assistant struct {
	provider  llm.Provider
	responder *evaluator.ChatResponder
	store     repository.Store
	now       func() time.Time
}

func NewAssistant(provider llm.Provider, store repository.Store, rng *rand.Rand) *Assistant {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Assistant{
		provider:  provider,
		responder: evaluator.NewChatResponder(rng),
		store:     store,
		now:       time.Now,
	}
}

// Profile is what the assistant knows about the student.
type Profile struct {
	User       *models.User
	Standard   string
	WeakTopics []string
}

func profileOf(u *models.User) Profile {
	if u == nil {
		return Profile{}
	}
	return Profile{User: u, Standard: u.Standard, WeakTopics: u.WeakTopics}
}

func assistantPrompt(p Profile, spoken bool) string {
	standard := p.Standard
	if standard == "" {
		standard = "school"
	}
	topics := strings.Join(p.WeakTopics, ", ")
	if topics == "" {
		topics = "various subjects"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are Atlas AI, an educational assistant helping a student in %s.\n", standard)
	fmt.Fprintf(&b, "The student has identified the following topics as areas they want to improve: %s.\n\n", topics)
	b.WriteString("Provide a helpful, conversational response that:\n")
	if spoken {
		b.WriteString("1. Is concise and easy to understand when spoken aloud (150-200 words maximum)\n")
	} else {
		b.WriteString("1. Is clear and well organized (at most 250 words)\n")
	}
	b.WriteString("2. Gives accurate educational information\n")
	b.WriteString("3. If the question relates to one of their weak topics, provide extra explanation and encouragement\n")
	b.WriteString("4. Uses a friendly, supportive tone appropriate for a student\n")
	b.WriteString("5. If the question isn't clear, politely asks for clarification\n")
	b.WriteString("6. If the question isn't education-related, gently redirects to educational topics\n")
	return b.String()
}

// history loads the student's recent turns, oldest first.
func (a *Assistant) history(ctx context.Context, p Profile) []llm.Message {
	if p.User == nil || a.store == nil {
		return nil
	}
	recent, err := a.store.GetRecentChatMessages(ctx, p.User.ID, historyTurns)
	if err != nil {
		slog.Warn("Failed to load chat history", "error", err, "user_id", p.User.ID)
		return nil
	}
	var msgs []llm.Message
	for _, m := range repository.ChronologicalOrder(recent) {
		role := llm.RoleUser
		if m.Role == "assistant" {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	return msgs
}

// Answer replies to message. spoken asks for an answer short enough to
// be read aloud.
func (a *Assistant) Answer(ctx context.Context, p Profile, message string, spoken bool) upstream.Outcome[Reply] {
	offline := func() Reply {
		return Reply{Text: a.responder.Respond(message, p.WeakTopics), Model: evaluator.MockChatModel}
	}
	if a.provider == nil {
		return upstream.Fallback(offline(), AssistantWarning, nil)
	}

	req := llm.Request{
		System:   assistantPrompt(p, spoken),
		Messages: append(a.history(ctx, p), llm.Message{Role: llm.RoleUser, Content: message}),
	}
	resp, err := a.provider.Generate(llm.WithPurpose(ctx, "assistant"), req)
	if err == nil && strings.TrimSpace(resp.Text()) == "" {
		err = &llm.ErrInvalidResponse{Err: errors.New("empty reply")}
	}
	if err != nil {
		slog.Warn("Assistant generation failed, using offline tutor", "error", err)
		return upstream.Fallback(offline(), AssistantWarning, err)
	}

	model := resp.Model
	if model == "" {
		model = a.provider.ModelID()
	}
	return upstream.Upstream(Reply{Text: strings.TrimSpace(resp.Text()), Model: model})
}

// Remember stores both turns of an exchange for a known student.
func (a *Assistant) Remember(ctx context.Context, p Profile, sessionID, language, question string, reply Reply) {
	if p.User == nil || a.store == nil {
		return
	}
	now := a.now()
	turns := []*models.ChatMessage{
		{UserID: p.User.ID, SessionID: sessionID, Role: "user", Content: question, Language: language, CreatedAt: now},
		{UserID: p.User.ID, SessionID: sessionID, Role: "assistant", Content: reply.Text, Model: reply.Model, Language: language, CreatedAt: now.Add(time.Millisecond)},
	}
	for _, m := range turns {
		if err := a.store.SaveChatMessage(ctx, m); err != nil {
			slog.Error("Failed to save chat message", "error", err, "user_id", p.User.ID, "role", m.Role)
			return
		}
	}
}
