package prepare

import (
	"strconv"
	"strings"
)

// ParseReactor extracts the reactor number from a sample identifier such as
// "S-3 rep1": the integer after the first hyphen of the first space-separated token.
func ParseReactor(id string) (int, error) {
	token, _, _ := strings.Cut(id, " ")
	if token == "" {
		return 0, &ParseError{ID: id, Reason: "empty first token"}
	}
	parts := strings.Split(token, "-")
	if len(parts) < 2 {
		return 0, &ParseError{ID: id, Reason: "no hyphen in first token"}
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &ParseError{ID: id, Reason: "reactor is not an integer"}
	}
	return n, nil
}

// StrainFor looks up the strain of reactor.
func StrainFor(lookup map[int]int, reactor int) (int, error) {
	s, ok := lookup[reactor]
	if !ok {
		return 0, &UnknownReactorError{Reactor: reactor}
	}
	return s, nil
}
