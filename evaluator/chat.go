package evaluator

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
)

// MockChatModel names the responder in chat replies.
const MockChatModel = "mock-ai-model"

var mathTips = []string{
	"When solving equations, always make sure to perform the same operation on both sides to maintain equality.",
	"For word problems, try to identify the variables first, then translate the problem into mathematical expressions.",
	"Graphs can be powerful visual tools to understand relationships between variables. Try sketching them when possible.",
	"Practice is key in mathematics. Try solving similar problems with different values to reinforce your understanding.",
	"Remember that multiplication and division take precedence over addition and subtraction in the order of operations.",
}

var scienceTips = []string{
	"In chemistry, the periodic table is organized by atomic number, which is the number of protons in an atom's nucleus.",
	"Newton's three laws of motion form the foundation of classical mechanics in physics.",
	"The cell is the basic structural and functional unit of all living organisms.",
	"Energy cannot be created or destroyed, only transformed from one form to another - this is the law of conservation of energy.",
	"Scientific theories are explanations supported by multiple lines of evidence, not just guesses or hypotheses.",
}

var generalResponses = []string{
	"This is a fascinating topic with many different aspects to explore. Let's break it down step by step.",
	"I think the key to understanding this is to consider the fundamental principles involved.",
	"There are several important factors to consider when addressing this question.",
	"This is something many students find challenging at first, but with practice, it becomes much clearer.",
	"Let me provide you with a comprehensive explanation that should help clarify this concept.",
}

var (
	mathKeywords    = []string{"math", "algebra", "equation", "calculus", "solve"}
	scienceKeywords = []string{"science", "chemistry", "physics", "biology"}
)

// ChatResponder answers chat messages without a language model.
type ChatResponder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewChatResponder(rng *rand.Rand) *ChatResponder {
	return &ChatResponder{rng: rng}
}

// Respond picks a math or science tip when the message mentions one of
// those subjects, acknowledging it when the student is weak in it.
// Anything else gets a general reply that quotes the message.
func (c *ChatResponder) Respond(message string, weakTopics []string) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, mathKeywords):
		tip := c.pick(mathTips)
		if slices.Contains(weakTopics, "Algebra") || slices.Contains(weakTopics, "Math") {
			return "I notice you're asking about math, which is one of the areas you're working to improve. Let me help you with that!\n\n" +
				"To solve math problems effectively, remember to break them down into smaller steps. " + tip + "\n\n" +
				"Does this help with your question? Feel free to ask for more specific examples if needed."
		}
		return "That's a great math question! " + tip + "\n\nI hope this helps! Let me know if you need more clarification."

	case containsAny(lower, scienceKeywords):
		tip := c.pick(scienceTips)
		if slices.Contains(weakTopics, "Chemistry") || slices.Contains(weakTopics, "Physics") {
			return "I see you're asking about science, which is one of the areas you're working to strengthen. Let me help you with that!\n\n" +
				tip + "\n\nDoes this explanation make sense? I'm happy to provide more examples if needed."
		}
		return "Excellent science question! " + tip + "\n\nI hope this helps with your understanding! Let me know if you'd like to explore this topic further."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your question about \"%s\"! I'd be happy to help you with that.", excerpt(message, 30))

	var keywords []string
	for _, w := range strings.Fields(lower) {
		if len([]rune(w)) > 3 {
			keywords = append(keywords, w)
		}
	}
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "\n\nI see you're interested in %s. That's a fascinating topic!", strings.Join(keywords[:min(3, len(keywords))], ", "))
	}

	if strings.HasSuffix(strings.TrimSpace(message), "?") {
		b.WriteString("\n\nTo answer your question: ")
	} else {
		b.WriteString("\n\nHere's what I can tell you: ")
	}
	b.WriteString("\n" + c.pick(generalResponses))
	b.WriteString("\n\nIs there anything specific about this topic you'd like me to explain in more detail?")
	return b.String()
}

func (c *ChatResponder) pick(options []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return options[c.rng.IntN(len(options))]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// excerpt cuts s to n runes, marking the cut with an ellipsis.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
