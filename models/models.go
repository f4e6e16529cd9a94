package models

// Database schema overview:
// 1. users - accounts, class standard and the merged weak-topic list
// 2. refresh_tokens - hashed refresh cookies for the cookie session
// 3. quiz_results - graded quizzes with the suggestion shown to the student
// 4. interview_records - evaluated mock interviews, from the interview service or the local evaluator
// 5. chat_messages - assistant conversation turns
//
// The same structs are persisted by the postgres store (gorm tags) and
// the mongo store (bson tags).
