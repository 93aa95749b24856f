package fallback

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

var starterTemplates = map[string]string{
	"javascript": `function twoSum(nums, target) {
    // Your code here
    
}`,
	"typescript": `function twoSum(nums: number[], target: number): number[] {
    // Your code here
    
}`,
	"python": `def two_sum(nums, target):
    # Your code here
    pass`,
	"java": `public int[] twoSum(int[] nums, int target) {
    // Your code here
    
}`,
	"csharp": `public int[] TwoSum(int[] nums, int target) {
    // Your code here
    
}`,
	"cpp": `vector<int> twoSum(vector<int>& nums, int target) {
    // Your code here
    
}`,
	"go": `func twoSum(nums []int, target int) []int {
    // Your code here
    
}`,
	"rust": `impl Solution {
    pub fn two_sum(nums: Vec<i32>, target: i32) -> Vec<i32> {
        // Your code here
        
    }
}`,
	"php": `function twoSum($nums, $target) {
    // Your code here
    
}`,
	"ruby": `def two_sum(nums, target)
    # Your code here
    
end`,
}

// StarterCode returns the editor template for language, case-insensitively.
// Unknown languages get the JavaScript template.
func StarterCode(language string) string {
	if tpl, ok := starterTemplates[strings.ToLower(strings.TrimSpace(language))]; ok {
		return tpl
	}
	return starterTemplates["javascript"]
}

// Difficulty maps an experience level to the problem difficulty label.
func Difficulty(experience string) string {
	switch experience {
	case domain.ExperienceEntry:
		return "Easy"
	case domain.ExperienceSenior:
		return "Hard"
	default:
		return "Medium"
	}
}

type problemTemplate struct {
	title       string
	description string
	examples    []domain.FlexString
	topics      []string
}

var codingProblems = []problemTemplate{
	{
		title:       "Valid Parentheses",
		description: "Given a string s containing just the characters '(', ')', '{', '}', '[' and ']', determine if the input string is valid. An input string is valid if: Open brackets must be closed by the same type of brackets in the correct order.",
		examples:    []domain.FlexString{"Input: s = \"()\"\nOutput: true", "Input: s = \"()[]{}\"\nOutput: true", "Input: s = \"(]\"\nOutput: false"},
		topics:      []string{"Stack", "String"},
	},
	{
		title:       "Merge Two Sorted Lists",
		description: "You are given the heads of two sorted linked lists list1 and list2. Merge the two lists in a one sorted list. The list should be made by splicing together the nodes of the first two lists.",
		examples:    []domain.FlexString{"Input: list1 = [1,2,4], list2 = [1,3,4]\nOutput: [1,1,2,3,4,4]"},
		topics:      []string{"Linked List", "Recursion"},
	},
	{
		title:       "Maximum Subarray",
		description: "Given an integer array nums, find the contiguous subarray (containing at least one number) which has the largest sum and return its sum.",
		examples:    []domain.FlexString{"Input: nums = [-2,1,-3,4,-1,2,1,-5,4]\nOutput: 6\nExplanation: [4,-1,2,1] has the largest sum = 6"},
		topics:      []string{"Array", "Dynamic Programming"},
	},
}

// CodingProblem picks one of the canned coding problems for profile.
func CodingProblem(profile domain.InterviewProfile, p domain.Picker) domain.CodingProblem {
	tpl := codingProblems[p.Intn(len(codingProblems))]
	return domain.CodingProblem{
		Title:       tpl.title,
		Description: tpl.description,
		Examples:    append([]domain.FlexString(nil), tpl.examples...),
		StarterCode: StarterCode(profile.Language),
		TestCases: []domain.TestCase{
			{Input: "Test case 1", Expected: "Expected output 1"},
			{Input: "Test case 2", Expected: "Expected output 2"},
			{Input: "Edge case", Expected: "Edge case output"},
		},
		Hints:      []string{"Consider the data structure needed", "Think about edge cases", "What's the optimal time complexity?"},
		Difficulty: Difficulty(profile.Experience),
		TimeLimit:  "45 minutes",
		Topics:     append([]string(nil), tpl.topics...),
	}
}

// TechnicalSet picks one of the two canned technical question sets.
func TechnicalSet(profile domain.InterviewProfile, p domain.Picker) domain.TechnicalSet {
	lang := profile.Language
	sets := [][]domain.TechnicalQuestion{
		{
			{
				Question:       "What's the time complexity of your solution and how could you optimize it?",
				Type:           "coding-followup",
				ExpectedAnswer: "Analyze time/space complexity and optimization strategies",
				FollowUp:       "What trade-offs would you consider?",
			},
			{
				Question:       fmt.Sprintf("Explain the memory management in %s. How does it handle garbage collection?", lang),
				Type:           "language-specific",
				ExpectedAnswer: "Language-specific memory management concepts",
				FollowUp:       "How would this affect performance in production?",
			},
			{
				Question:       "Design a system to handle 1 million concurrent users. What are your key considerations?",
				Type:           "system-design",
				ExpectedAnswer: "Load balancing, caching, database scaling, microservices",
				FollowUp:       "How would you monitor and debug this system?",
			},
		},
		{
			{
				Question:       fmt.Sprintf("What are the main differences between %s and other languages you've used?", lang),
				Type:           "language-specific",
				ExpectedAnswer: "Comparative analysis of language features",
				FollowUp:       "When would you choose one over the other?",
			},
			{
				Question:       "How would you debug a performance issue in a web application?",
				Type:           "practical",
				ExpectedAnswer: "Profiling, monitoring, bottleneck identification",
				FollowUp:       "What tools would you use?",
			},
			{
				Question:       "Explain the concept of database indexing and when you'd use different types.",
				Type:           "system-design",
				ExpectedAnswer: "B-tree, hash, composite indexes and use cases",
				FollowUp:       "What are the trade-offs of over-indexing?",
			},
		},
	}
	return domain.TechnicalSet{Questions: sets[p.Intn(len(sets))]}
}

// BehavioralSet returns the fixed behavioral questions; the leadership
// question differs for entry-level candidates.
func BehavioralSet(profile domain.InterviewProfile) domain.BehavioralSet {
	leadership := domain.BehavioralQuestion{
		Question:   "Describe a situation where you had to lead a project or mentor someone.",
		Category:   "leadership",
		LookingFor: []string{"Leadership", "Mentoring", "Strategic thinking"},
		FollowUp:   "What was the outcome?",
	}
	if profile.Experience == domain.ExperienceEntry {
		leadership.Question = "Tell me about a time when you took initiative to learn something new."
		leadership.LookingFor = []string{"Learning agility", "Proactivity", "Growth mindset"}
	}
	return domain.BehavioralSet{Questions: []domain.BehavioralQuestion{
		{
			Question:   "Tell me about a time when you had to work with a difficult team member. How did you handle the situation?",
			Category:   "teamwork",
			LookingFor: []string{"Communication skills", "Conflict resolution", "Empathy"},
			FollowUp:   "What would you do differently next time?",
		},
		{
			Question:   "Describe a challenging technical problem you solved. Walk me through your approach.",
			Category:   "problem-solving",
			LookingFor: []string{"Analytical thinking", "Persistence", "Learning ability"},
			FollowUp:   "How did you validate your solution?",
		},
		leadership,
		{
			Question:   fmt.Sprintf("Why do you want to work at a %s company? What attracts you to this type of environment?", profile.CompanyType),
			Category:   "culture-fit",
			LookingFor: []string{"Company research", "Cultural alignment", "Motivation"},
			FollowUp:   "How do you see yourself contributing to our team?",
		},
	}}
}

// StageContent returns the canned content for a content stage. ok is false
// for stages without content.
func StageContent(stage domain.Stage, profile domain.InterviewProfile, p domain.Picker) (any, bool) {
	switch stage {
	case domain.StageCoding:
		return CodingProblem(profile, p), true
	case domain.StageTechnical:
		return TechnicalSet(profile, p), true
	case domain.StageBehavioral:
		return BehavioralSet(profile), true
	default:
		return nil, false
	}
}
