package prompt

// Templates use ${name} placeholders; ${fence} renders as three backticks.

const generateChallengeTemplate = `Generate a ${challengeType} coding challenge for ${skillLevel} level in ${language}.

Requirements:
- For bug-fix: Provide code with 1-2 subtle bugs that need fixing
- For code-completion: Provide incomplete code that needs completion
- Include a clear description of what the code should do
- Make it realistic and practical
- Difficulty appropriate for ${skillLevel} level
- Code should be properly formatted and ready to run

Return ONLY a valid JSON object with this exact structure (no markdown, no extra text):
{
  "title": "Challenge title",
  "description": "What the code should accomplish",
  "code": "The buggy or incomplete code with proper formatting",
  "expectedOutput": "What the correct output should be (if applicable)",
  "hints": ["Hint 1", "Hint 2"]
}`

const evaluateSolutionTemplate = `You are an expert code reviewer. Evaluate this ${language} coding solution.

CHALLENGE: ${title}
TYPE: ${challengeType}
DESCRIPTION: ${description}
EXPECTED OUTPUT: ${expectedOutput}

ORIGINAL CODE:
${code}

USER'S SOLUTION:
${userCode}

EVALUATION CRITERIA:
1. CORRECTNESS (0-100): Does the solution work correctly and solve the problem?
2. EFFICIENCY (0-100): Is the algorithm efficient in time/space complexity?
3. CODE QUALITY (0-100): Is the code clean, readable, and well-structured?

SCORING GUIDELINES:
- If code is identical to original: Give very low scores (10-25)
- For bug-fix challenges: User must actually fix the bugs
- For completion challenges: User must complete missing parts
- Be realistic with efficiency scores (90+ only for optimal solutions)
- Consider ${skillLevel} skill level in evaluation

${identicalWarning}

Respond with ONLY this JSON format (no markdown, no extra text):
{
  "correctness": 85,
  "efficiency": 78,
  "codeQuality": 82,
  "feedback": "Clear, specific feedback about the solution quality and what was done well or needs improvement",
  "suggestions": ["Specific actionable suggestion 1", "Specific actionable suggestion 2", "Specific actionable suggestion 3"],
  "isCorrect": true
}`

const identicalWarning = "⚠️ WARNING: User submitted identical code - this should receive low scores!"

const codingStageTemplate = `You are an expert technical interviewer. Create a unique coding interview problem for a ${experience} level ${role} position at a ${companyType} company using ${language}.

IMPORTANT: Return ONLY a valid JSON object with no additional text, markdown, or explanations.

Generate a problem that is:
- Appropriate for ${experience} level (${levelFocus})
- Suitable for ${companyType} company style (${companyStyle})
- Different from common problems like Two Sum, Reverse String, etc.

JSON format:
{
  "title": "Unique Problem Title",
  "description": "Clear problem description with constraints and requirements",
  "examples": ["Input: example1\nOutput: result1", "Input: example2\nOutput: result2"],
  "starterCode": "${starterCode}",
  "testCases": [
    {"input": "specific test input", "expected": "expected output"},
    {"input": "edge case input", "expected": "edge case output"},
    {"input": "complex case input", "expected": "complex output"}
  ],
  "hints": ["First helpful hint", "Second hint about approach", "Third hint about optimization"],
  "difficulty": "${difficulty}",
  "timeLimit": "45 minutes",
  "topics": ["Relevant Topic 1", "Relevant Topic 2"]
}`

const technicalStageTemplate = `You are conducting a technical interview for a ${experience} level ${role} at a ${companyType} company. Create 5 diverse technical questions.

IMPORTANT: Return ONLY a valid JSON object with no additional text.

Focus on:
- ${language} specific concepts and best practices
- ${role} relevant technologies and patterns
- ${experience} appropriate depth (${depth})
- ${companyType} company expectations

JSON format:
{
  "questions": [
    {
      "question": "Specific technical question about ${language} or ${role} concepts",
      "type": "language-specific",
      "expectedAnswer": "Key points the candidate should mention",
      "followUp": "Follow-up question to go deeper"
    },
    {
      "question": "Question about system design or architecture",
      "type": "system-design", 
      "expectedAnswer": "Expected architectural considerations",
      "followUp": "How would you scale this?"
    },
    {
      "question": "Practical coding or debugging scenario",
      "type": "practical",
      "expectedAnswer": "Problem-solving approach expected",
      "followUp": "What tools would you use?"
    },
    {
      "question": "Question about best practices or code quality",
      "type": "best-practices",
      "expectedAnswer": "Industry standards and practices",
      "followUp": "How do you ensure code quality?"
    },
    {
      "question": "Experience-based question about challenges",
      "type": "experience",
      "expectedAnswer": "Real-world problem solving",
      "followUp": "What did you learn from that?"
    }
  ]
}`

const behavioralStageTemplate = `You are conducting a behavioral interview for a ${experience} level ${role} at a ${companyType} company. Create 4 behavioral questions using the STAR method.

IMPORTANT: Return ONLY a valid JSON object with no additional text.

Tailor questions for:
- ${experience} level expectations (${expectations})
- ${role} specific scenarios
- ${companyType} company culture (${culture})

JSON format:
{
  "questions": [
    {
      "question": "Tell me about a time when you had to [specific scenario relevant to ${role} and ${experience} level]",
      "category": "teamwork",
      "lookingFor": ["Specific skill 1", "Specific skill 2", "Specific skill 3"],
      "followUp": "What would you do differently next time?"
    },
    {
      "question": "Describe a situation where you [problem-solving scenario for ${role}]",
      "category": "problem-solving", 
      "lookingFor": ["Analytical thinking", "Creativity", "Persistence"],
      "followUp": "How did you measure success?"
    },
    {
      "question": "${leadershipQuestion}",
      "category": "leadership",
      "lookingFor": ["${leadershipTrait}", "Initiative", "Growth mindset"],
      "followUp": "What was the long-term impact?"
    },
    {
      "question": "Why are you interested in working at a ${companyType} company, and how do you see yourself contributing to a ${role} role?",
      "category": "culture-fit",
      "lookingFor": ["Company research", "Role understanding", "Cultural alignment"],
      "followUp": "What excites you most about this opportunity?"
    }
  ]
}`

const evaluateInterviewTemplate = `Evaluate this technical interview performance and provide detailed feedback.

INTERVIEW CONTEXT:
- Company Type: ${companyType}
- Role: ${role}
- Experience Level: ${experience}
- Programming Language: ${language}

CODING CHALLENGE:
Problem: ${problemTitle}
Description: ${problemDescription}
User's Solution:
${fence}${language}
${codeSolution}
${fence}

TECHNICAL QUESTIONS & ANSWERS:
${technicalQA}

BEHAVIORAL QUESTIONS & ANSWERS:
${behavioralQA}

Please evaluate and return ONLY valid JSON in this format:
{
  "overallScore": 75,
  "codingScore": 80,
  "technicalScore": 70,
  "behavioralScore": 75,
  "strengths": [
    "Strong problem-solving approach",
    "Clear communication skills",
    "Good understanding of algorithms"
  ],
  "improvements": [
    "Consider edge cases in coding solutions",
    "Provide more specific examples in behavioral answers",
    "Explain time complexity analysis"
  ],
  "feedback": "Overall solid performance with good technical skills. The coding solution demonstrates understanding of the problem, though there's room for optimization. Behavioral answers show good self-awareness but could benefit from more specific examples using the STAR method.",
  "codingFeedback": "The solution works correctly but could be optimized for better time complexity. Consider using a hash map for O(n) solution.",
  "technicalFeedback": "Good understanding of core concepts. Answers show practical knowledge but could dive deeper into system design considerations.",
  "behavioralFeedback": "Responses demonstrate good self-reflection and problem-solving mindset. Use more specific examples and quantify results when possible."
}

Scoring Guidelines:
- 90-100: Exceptional performance, ready for senior roles
- 80-89: Strong performance, good fit for the role
- 70-79: Solid performance with some areas for improvement
- 60-69: Adequate performance, needs development
- Below 60: Significant improvement needed

Consider the experience level when scoring - be more lenient for entry level, more demanding for senior level.`
