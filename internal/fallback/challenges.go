// Package fallback holds the static content served when the AI provider is
// unavailable or answers with something unusable.
package fallback

import (
	"github.com/fairyhunter13/prepio-api/internal/domain"
)

const (
	langJavaScript = "JavaScript"
	langPython     = "Python"
)

type challengeTemplate struct {
	title          string
	description    string
	code           string
	expectedOutput string
	hints          []string
}

var challengeTable = map[string]map[string]challengeTemplate{
	langJavaScript: {
		domain.ChallengeTypeBugFix: {
			title:       "Fix the Array Sum Function",
			description: "This function should calculate the sum of all numbers in an array, but it has a bug. Find and fix the issue.",
			code: `function sumArray(numbers) {
  let sum = 0;
  for (let i = 0; i <= numbers.length; i++) {
    sum += numbers[i];
  }
  return sum;
}

// Test the function
console.log(sumArray([1, 2, 3, 4, 5])); // Should return 15`,
			expectedOutput: "15",
			hints: []string{
				"Check the loop condition carefully",
				"What happens when you access an array index that doesn't exist?",
			},
		},
		domain.ChallengeTypeCodeCompletion: {
			title:       "Complete the Fibonacci Function",
			description: "Complete this function to generate the nth Fibonacci number.",
			code: `function fibonacci(n) {
  if (n <= 1) {
    return n;
  }
  
  // TODO: Complete the recursive case
  // return ???
}

// Test the function
console.log(fibonacci(10)); // Should return 55`,
			expectedOutput: "55",
			hints: []string{
				"Fibonacci sequence: F(n) = F(n-1) + F(n-2)",
				"You need to return the sum of the two previous numbers",
			},
		},
	},
	langPython: {
		domain.ChallengeTypeBugFix: {
			title:       "Fix the List Reversal Function",
			description: "This function should reverse a list, but it has a bug. Find and fix the issue.",
			code: `def reverse_list(lst):
    reversed_list = []
    for i in range(len(lst)):
        reversed_list.append(lst[i])
    return reversed_list

# Test the function
print(reverse_list([1, 2, 3, 4, 5]))  # Should return [5, 4, 3, 2, 1]`,
			expectedOutput: "[5, 4, 3, 2, 1]",
			hints: []string{
				"Think about the order you're accessing elements",
				"How can you access elements from the end of the list?",
			},
		},
		domain.ChallengeTypeCodeCompletion: {
			title:       "Complete the Prime Check Function",
			description: "Complete this function to check if a number is prime.",
			code: `def is_prime(n):
    if n < 2:
        return False
    
    # TODO: Complete the prime checking logic
    # for i in range(???, ???):
    #     if ???:
    #         return False
    
    return True

# Test the function
print(is_prime(17))  # Should return True`,
			expectedOutput: "True",
			hints: []string{
				"Check divisibility from 2 to sqrt(n)",
				"If any number divides n evenly, it's not prime",
			},
		},
	},
}

// Challenge returns the static challenge for req. Unknown languages use the
// JavaScript entries and unknown challenge types use the bug-fix entry. The
// request's language, skill level and type are always echoed back.
func Challenge(req domain.ChallengeRequest, id string) domain.Challenge {
	byType, ok := challengeTable[req.Language]
	if !ok {
		byType = challengeTable[langJavaScript]
	}
	tpl, ok := byType[req.ChallengeType]
	if !ok {
		tpl = byType[domain.ChallengeTypeBugFix]
	}
	return domain.Challenge{
		ID:             id,
		Title:          tpl.title,
		Description:    tpl.description,
		Code:           tpl.code,
		Language:       req.Language,
		SkillLevel:     req.SkillLevel,
		ChallengeType:  req.ChallengeType,
		ExpectedOutput: tpl.expectedOutput,
		Hints:          append([]string(nil), tpl.hints...),
	}
}
