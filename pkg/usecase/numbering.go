package usecase

import (
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// ProposeNumber proposes the next serial number for a document series given
// the numbers already in use. The policy is fill-holes-first: the result is
// always the smallest unused positive integer, not a monotonic counter.
// The input is neither mutated nor assumed sorted or deduplicated.
func ProposeNumber(existing []int) (int, error) {
	numbers := make([]int, len(existing))
	copy(numbers, existing)
	sort.Ints(numbers)

	if len(numbers) == 0 {
		return 1, nil
	}

	for i, n := range numbers {
		if i == 0 && n > 1 {
			return 1, nil
		}

		if i+1 == len(numbers) {
			return n + 1, nil
		}

		if numbers[i+1] > n+1 {
			return n + 1, nil
		}
	}

	// The scan above always returns on the last element; reaching here is a
	// logic defect, not a data problem.
	return 0, goerr.New("number proposal scan completed without a result",
		goerr.V("numbers", numbers))
}
