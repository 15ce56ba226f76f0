// Command verify checks the knowledge base for consistency and exits non-zero
// when a check fails. It verifies the embedded document, or the file given
// with -file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mapgpt/mapgpt-go/internal/knowledge"
)

var fileFlag = flag.String("file", "", "Knowledge JSON file to verify (default: embedded document)")

// Verification results
type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	flag.Parse()

	fmt.Println("🔍 MapGPT - Knowledge Base Verification Tool")
	fmt.Println("============================================")

	data := knowledge.Embedded()
	source := "embedded"
	if *fileFlag != "" {
		var err error
		if data, err = os.ReadFile(*fileFlag); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *fileFlag, err)
			os.Exit(1)
		}
		source = *fileFlag
	}
	fmt.Printf("Source: %s\n", source)

	results := verify(data)

	fmt.Println("\n📊 Verification Results:")
	fmt.Println("========================")

	passedCount := 0
	failedCount := 0
	for _, result := range results {
		status := "❌"
		if result.passed {
			status = "✅"
			passedCount++
		} else {
			failedCount++
		}
		fmt.Printf("%s %s: %s\n", status, result.name, result.message)
	}

	fmt.Printf("\n📈 Summary: %d passed, %d failed\n", passedCount, failedCount)

	if failedCount > 0 {
		os.Exit(1)
	}
}

// verify runs every check against a raw knowledge document.
func verify(data []byte) []verifyResult {
	base, err := knowledge.Load(bytes.NewReader(data))
	if err != nil {
		return []verifyResult{{
			name:    "Document",
			passed:  false,
			message: err.Error(),
		}}
	}

	results := []verifyResult{{
		name:    "Document",
		passed:  true,
		message: fmt.Sprintf("%d topics loaded", base.Topics.Len()),
	}}
	results = append(results, verifyTopicsReachable(base)...)
	results = append(results, verifySharedKeywords(base))
	results = append(results, verifyHelpPhrases(base))
	results = append(results, verifySystemInstruction(base))
	return results
}

// verifyTopicsReachable checks that every keyword selects its own topic and
// that keywords long enough to gate on count as in-domain.
func verifyTopicsReachable(base *knowledge.Base) []verifyResult {
	var results []verifyResult
	for _, topic := range base.Topics.Topics() {
		var unreachable []string
		for _, kw := range topic.Keywords {
			gates := utf8.RuneCountInString(kw) >= knowledge.MinGateKeywordLength
			if !slices.Contains(base.Topics.MatchedTopics(kw), topic.Name) || (gates && !base.InDomain(kw)) {
				unreachable = append(unreachable, kw)
			}
		}

		result := verifyResult{
			name:    "Topic Reachable: " + topic.Name,
			passed:  len(unreachable) == 0,
			message: fmt.Sprintf("%d keywords", len(topic.Keywords)),
		}
		if !result.passed {
			result.message = fmt.Sprintf("Keywords not selecting topic: %v", unreachable)
		}
		results = append(results, result)
	}
	return results
}

// verifySharedKeywords fails when two topics list the same keyword.
// Substring overlaps ("ee" in "engineering") are expected and not reported.
func verifySharedKeywords(base *knowledge.Base) verifyResult {
	owner := make(map[string]string)
	var shared []string
	for _, topic := range base.Topics.Topics() {
		for _, kw := range topic.Keywords {
			if prev, ok := owner[kw]; ok && prev != topic.Name {
				shared = append(shared, fmt.Sprintf("%q (%s, %s)", kw, prev, topic.Name))
				continue
			}
			owner[kw] = topic.Name
		}
	}

	if len(shared) > 0 {
		return verifyResult{
			name:    "Topic Keywords Unique",
			passed:  false,
			message: "Shared keywords: " + strings.Join(shared, ", "),
		}
	}
	return verifyResult{
		name:    "Topic Keywords Unique",
		passed:  true,
		message: fmt.Sprintf("%d distinct keywords", len(owner)),
	}
}

// verifyHelpPhrases checks that every help phrase is recognized as one.
func verifyHelpPhrases(base *knowledge.Base) verifyResult {
	for _, phrase := range base.Help.Phrases {
		if !base.IsHelp(phrase) {
			return verifyResult{
				name:    "Help Phrases",
				passed:  false,
				message: fmt.Sprintf("Phrase %q is not recognized", phrase),
			}
		}
	}
	return verifyResult{
		name:    "Help Phrases",
		passed:  true,
		message: strings.Join(base.Help.Phrases, ", "),
	}
}

func verifySystemInstruction(base *knowledge.Base) verifyResult {
	instruction := base.SystemInstruction()
	passed := strings.Contains(instruction, base.General.SchoolName) &&
		strings.Contains(instruction, base.General.Location)
	message := fmt.Sprintf("%d recent updates", len(base.General.RecentUpdates))
	if !passed {
		message = "Instruction does not name the school and its location"
	}
	return verifyResult{
		name:    "System Instruction",
		passed:  passed,
		message: message,
	}
}
