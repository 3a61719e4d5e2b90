// Package parser converts battle command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/fraycore/types"
)

var verbAliases = map[string]string{
	// Attack
	"a":      "attack",
	"hit":    "attack",
	"fight":  "attack",
	"strike": "attack",
	"kill":   "attack",
	"slash":  "attack",

	// Skills
	"c":     "cast",
	"skill": "cast",
	"magic": "cast",
	"spell": "cast",

	// Items
	"u":     "use",
	"item":  "use",
	"drink": "use",
	"quaff": "use",

	// Defend
	"d":     "defend",
	"guard": "defend",
	"block": "defend",
	"brace": "defend",

	// Flee
	"r":       "flee",
	"run":     "flee",
	"escape":  "flee",
	"retreat": "flee",

	// Repeat
	"g": "again",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "against": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// "cast heal" or "use potion" take an object and an optional target;
	// "attack goblin" only names a target.
	object, target := splitOnPreposition(rest)

	// "cast fireball all" targets the whole side without a preposition.
	if verb == "cast" && target == "" {
		if fields := strings.Fields(object); len(fields) > 1 && fields[len(fields)-1] == "all" {
			object = strings.Join(fields[:len(fields)-1], " ")
			target = "all"
		}
	}

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "run away", "use skill" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "run", "get":
		if words[1] == "away" {
			return append([]string{"flee"}, words[2:]...)
		}
	case "use":
		if words[1] == "skill" || words[1] == "magic" {
			return append([]string{"cast"}, words[2:]...)
		}
	case "do":
		if words[1] == "again" {
			return []string{"again"}
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
