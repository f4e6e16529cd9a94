package interviewsvc

var questionBank = map[string][]string{
	"general": {
		"Tell me about yourself.",
		"What are your strengths and weaknesses?",
		"Why do you want to work for this company?",
		"Where do you see yourself in 5 years?",
		"Describe a challenging situation you faced and how you handled it.",
	},
	"technical": {
		"Explain the difference between arrays and linked lists.",
		"What is object-oriented programming?",
		"How would you optimize a slow database query?",
		"Explain the concept of recursion with an example.",
		"What is the difference between HTTP and HTTPS?",
	},
	"behavioral": {
		"Describe a time when you had to work with a difficult team member.",
		"Tell me about a project you're particularly proud of.",
		"How do you handle criticism?",
		"Describe your leadership style.",
		"How do you prioritize tasks when you have multiple deadlines?",
	},
}

var mixedCategories = []string{"general", "technical", "behavioral"}

var feedbackTemplates = map[string][]string{
	"positive": {
		"Great answer! You provided clear examples and demonstrated your skills effectively.",
		"Excellent response. You articulated your thoughts well and addressed the key points.",
		"Strong answer. You showed good understanding of the topic and communicated clearly.",
		"Very good! Your answer was structured well and you highlighted relevant experiences.",
		"Well done! You gave a comprehensive answer that effectively showcased your abilities.",
	},
	"neutral": {
		"Good start, but try to include more specific examples from your experience.",
		"Your answer covers the basics, but could benefit from more detail about your role.",
		"You made some good points, but consider structuring your answer with the STAR method (Situation, Task, Action, Result).",
		"Decent response. To improve, try to quantify your achievements with metrics or results.",
		"You addressed the question, but could elaborate more on how your skills apply to this role.",
	},
	"constructive": {
		"Try to be more specific with your examples and focus on your direct contributions.",
		"Consider keeping your answers more concise and focused on the most relevant points.",
		"Remember to highlight what you learned from challenging situations, not just what happened.",
		"Make sure to connect your experiences back to the job you're applying for.",
		"Work on eliminating filler words and pauses to sound more confident in your responses.",
	},
}

// metric is one observed delivery score with feedback per band.
type metric struct {
	name    string
	good    string
	average string
	poor    string
}

var metrics = []metric{
	{
		"eye_contact",
		"You maintained excellent eye contact throughout the interview, which conveys confidence and engagement.",
		"Your eye contact was generally good, but try to maintain it more consistently throughout your responses.",
		"Work on improving your eye contact. Looking at the camera helps establish a connection with the interviewer.",
	},
	{
		"facial_expressions",
		"Your facial expressions were engaging and showed enthusiasm for the position.",
		"Your facial expressions were appropriate, but could be more animated to show your interest and enthusiasm.",
		"Try to be more expressive during your interview. A neutral face can sometimes be interpreted as disinterest.",
	},
	{
		"speaking_pace",
		"Your speaking pace was excellent - clear, measured, and easy to follow.",
		"Your speaking pace was generally good, but occasionally you spoke too quickly. Remember to pause between key points.",
		"Work on your speaking pace. Speaking too quickly can make it difficult for interviewers to follow your responses.",
	},
	{
		"voice_clarity",
		"Your voice was clear and well-modulated, making your answers easy to understand.",
		"Your voice clarity was generally good, but sometimes your volume dropped. Maintain a consistent, clear voice.",
		"Focus on speaking more clearly and at a consistent volume to ensure your answers are fully understood.",
	},
	{
		"filler_words",
		"You used minimal filler words, which made your responses sound polished and well-prepared.",
		"You occasionally used filler words like 'um' and 'uh'. Try to reduce these for more polished responses.",
		"Work on reducing filler words like 'um', 'uh', and 'like'. These can distract from your message and make you appear less confident.",
	},
}

func (m metric) feedback(score float64) string {
	switch {
	case score > 0.8:
		return m.good
	case score > 0.5:
		return m.average
	default:
		return m.poor
	}
}

// metricRanges are the uniform ranges unobserved metrics are drawn from,
// and metricWeights their share of the communication score.
var (
	metricRanges = map[string][2]float64{
		"eye_contact":        {0.5, 1.0},
		"facial_expressions": {0.4, 0.9},
		"speaking_pace":      {0.6, 0.95},
		"voice_clarity":      {0.5, 0.9},
		"filler_words":       {0.4, 0.85},
	}
	metricWeights = map[string]float64{
		"eye_contact":        2.5,
		"facial_expressions": 2.0,
		"speaking_pace":      1.8,
		"voice_clarity":      1.8,
		"filler_words":       1.9,
	}
	defaultEndScores = map[string]float64{
		"eye_contact":        8.5,
		"facial_expressions": 8.7,
		"speaking_pace":      7.8,
		"voice_clarity":      8.2,
		"filler_words":       7.5,
	}
	weakAreaFeedback = map[string]string{
		"eye_contact":        "Your eye contact needs improvement. Try to look directly at the camera more consistently during video interviews.",
		"facial_expressions": "Your facial expressions could be more engaging. Practice showing interest and enthusiasm through your expressions.",
		"speaking_pace":      "Your speaking pace needs adjustment. Practice speaking at a moderate, steady pace - not too fast or too slow.",
		"voice_clarity":      "Your voice clarity could be improved. Focus on speaking clearly and at an appropriate volume.",
		"filler_words":       "You use too many filler words (like 'um', 'uh', 'like'). Practice pausing instead of using these words.",
	}
)

var contentTips = []string{
	"Practice the STAR method (Situation, Task, Action, Result) for behavioral questions.",
	"Research the company thoroughly before your interview.",
	"Prepare concise stories that highlight your achievements.",
	"Focus on quantifiable results and specific examples.",
	"Tailor your answers to the specific job requirements.",
}

var communicationTips = []string{
	"Practice maintaining eye contact with the camera during video interviews.",
	"Record yourself answering questions to identify areas for improvement.",
	"Work on reducing filler words like 'um', 'uh', and 'like'.",
	"Practice speaking at a moderate pace - not too fast or too slow.",
	"Pay attention to your facial expressions and body language.",
}
