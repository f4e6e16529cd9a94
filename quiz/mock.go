package quiz

import "fmt"

type mockQuestion struct {
	format  string
	choices []string
	answer  int
}

var mockQuestions = []mockQuestion{
	{"What is the main focus of %s?", []string{"Research", "Application", "Theory", "History"}, 1},
	{"Who is considered the founder of %s?", []string{"Albert Einstein", "Isaac Newton", "Nikola Tesla", "Leonardo da Vinci"}, 2},
	{"In what year did %s become widely recognized?", []string{"1905", "1920", "1955", "1970"}, 0},
	{"Which of these is NOT related to %s?", []string{"Mathematics", "Physics", "Chemistry", "Literature"}, 3},
	{"What is a key principle of %s?", []string{"Conservation", "Innovation", "Reduction", "Expansion"}, 1},
	{"Which skill matters most when studying %s?", []string{"Memorization", "Critical thinking", "Speed reading", "Handwriting"}, 1},
	{"What is the best first step when learning %s?", []string{"Master the fundamentals", "Skip to advanced topics", "Avoid practice problems", "Read only summaries"}, 0},
	{"Where is %s most commonly applied?", []string{"Only in laboratories", "Only in classrooms", "In many real-world fields", "Nowhere in practice"}, 2},
	{"Which resource is most reliable for %s?", []string{"Random forum posts", "Peer-reviewed textbooks", "Social media", "Advertisements"}, 1},
	{"How can you check your understanding of %s?", []string{"Solve practice questions", "Reread the title", "Skip the exercises", "Guess the answers"}, 0},
}

// Mock returns a fixed quiz about topic. It satisfies Schema.
func Mock(topic string) Quiz {
	q := Quiz{
		Questions: make([]string, len(mockQuestions)),
		Options:   Options{Choices: make([][]string, len(mockQuestions))},
		Answers:   make([]int, len(mockQuestions)),
	}
	for i, m := range mockQuestions {
		q.Questions[i] = fmt.Sprintf(m.format, topic)
		q.Options.Choices[i] = append([]string(nil), m.choices...)
		q.Answers[i] = m.answer
	}
	return q
}
