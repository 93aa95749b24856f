package scoring

import "github.com/fairyhunter13/prepio-api/internal/domain"

// Report assembles an EvaluationReport from three sub-scores, choosing the
// texts from fixed threshold ladders.
func Report(coding, technical, behavioral int) domain.EvaluationReport {
	overall := Mean3(coding, technical, behavioral)
	return domain.EvaluationReport{
		OverallScore:       overall,
		CodingScore:        coding,
		TechnicalScore:     technical,
		BehavioralScore:    behavioral,
		Strengths:          strengths(coding, technical, behavioral),
		Improvements:       improvements(coding, technical, behavioral),
		Feedback:           overallFeedback(overall),
		CodingFeedback:     codingFeedback(coding),
		TechnicalFeedback:  technicalFeedback(technical),
		BehavioralFeedback: behavioralFeedback(behavioral),
	}
}

func strengths(coding, technical, behavioral int) []string {
	var out []string
	switch {
	case coding >= 70:
		out = append(out, "Provided a working code solution")
	case coding >= 30:
		out = append(out, "Made an attempt at the coding challenge")
	}
	switch {
	case technical >= 60:
		out = append(out, "Engaged meaningfully with technical questions")
	case technical >= 20:
		out = append(out, "Participated in technical discussion")
	}
	switch {
	case behavioral >= 60:
		out = append(out, "Provided structured behavioral responses")
	case behavioral >= 20:
		out = append(out, "Attempted to answer behavioral questions")
	}
	if len(out) == 0 {
		out = append(out, "Completed the interview process")
	}
	return out
}

func improvements(coding, technical, behavioral int) []string {
	var out []string
	switch {
	case coding < 30:
		out = append(out, "CRITICAL: Write actual code solutions, not just comments or single characters")
	case coding < 70:
		out = append(out, "Focus on writing more complete and optimized code solutions")
	}
	switch {
	case technical < 20:
		out = append(out, "CRITICAL: Provide meaningful answers to technical questions, not single letters")
	case technical < 60:
		out = append(out, "Provide more detailed technical explanations with examples")
	}
	switch {
	case behavioral < 20:
		out = append(out, "CRITICAL: Answer behavioral questions with complete sentences and examples")
	case behavioral < 60:
		out = append(out, "Use the STAR method (Situation, Task, Action, Result) for behavioral responses")
	}
	return append(out,
		"Practice explaining your thought process clearly",
		"Prepare specific examples before the interview",
	)
}

func overallFeedback(overall int) string {
	switch {
	case overall < 20:
		return "This interview performance indicates significant preparation is needed. Most responses were incomplete or consisted of single characters. Focus on practicing coding problems, preparing technical explanations, and developing specific examples for behavioral questions."
	case overall < 40:
		return "The interview performance shows minimal effort across all areas. While you participated, the responses lacked depth and completeness. Invest time in coding practice, technical concept review, and behavioral question preparation."
	case overall < 60:
		return "Your interview performance shows some engagement but needs significant improvement. Focus on providing complete, thoughtful responses rather than brief answers. Practice coding problems daily and prepare specific examples for behavioral questions."
	case overall < 75:
		return "Solid interview performance with room for improvement. Your responses show understanding but could be more detailed and comprehensive. Continue practicing and refining your explanations."
	default:
		return "Strong interview performance across all areas. Your responses demonstrate good technical knowledge and communication skills. Minor refinements in specific areas could make you even stronger."
	}
}

func codingFeedback(score int) string {
	switch {
	case score == 0:
		return "No code solution was provided. You must write actual code to solve the problem."
	case score < 20:
		return "The code solution was incomplete or consisted mainly of comments/single characters. Focus on implementing actual logic."
	case score < 50:
		return "The code shows some effort but lacks proper implementation. Practice coding problems and focus on complete solutions."
	case score < 70:
		return "Decent coding attempt but could be optimized. Consider time complexity and edge cases."
	default:
		return "Good coding approach with room for optimization and edge case handling."
	}
}

func technicalFeedback(score int) string {
	switch {
	case score < 10:
		return "Technical answers were mostly single characters or empty. You need to provide complete, thoughtful explanations."
	case score < 30:
		return "Technical responses were too brief and lacked depth. Expand your answers with examples and explanations."
	case score < 60:
		return "Technical knowledge is present but explanations need more detail and examples."
	default:
		return "Solid technical understanding with good explanations."
	}
}

func behavioralFeedback(score int) string {
	switch {
	case score < 10:
		return "Behavioral answers were inadequate (single letters/words). You must provide complete stories using the STAR method."
	case score < 30:
		return "Behavioral responses were too brief. Use the STAR method with specific examples and detailed explanations."
	case score < 60:
		return "Behavioral answers show some effort but need more structure and specific examples using STAR format."
	default:
		return "Good behavioral responses with relevant examples and proper structure."
	}
}

// StaticReport is returned when the evaluation could not run at all.
func StaticReport() domain.EvaluationReport {
	return domain.EvaluationReport{
		OverallScore:    65,
		CodingScore:     60,
		TechnicalScore:  65,
		BehavioralScore: 70,
		Strengths: []string{
			"Completed the interview process",
			"Engaged with all questions",
			"Demonstrated willingness to learn",
		},
		Improvements: []string{
			"Practice coding problems regularly",
			"Prepare more detailed technical explanations",
			"Use specific examples in behavioral questions",
		},
		Feedback:           "Thank you for completing the interview simulation. This experience helps identify areas for improvement in your interview skills. Continue practicing and you'll see improvement in your performance.",
		CodingFeedback:     "Focus on writing complete, working solutions and explaining your approach clearly.",
		TechnicalFeedback:  "Prepare for technical questions by reviewing core concepts and practicing explanations.",
		BehavioralFeedback: "Use the STAR method to structure your behavioral responses with specific examples.",
	}
}
