// Package knowledge holds the institution's static facts: general school
// data, per-department topic blocks, and the keyword sets that decide whether
// a prompt is about the institution at all.
//
// A Base is loaded once at startup and shared read-only by every request.
package knowledge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mapgpt/mapgpt-go/internal/sliceutil"
	"github.com/mapgpt/mapgpt-go/internal/stringutil"
)

//go:embed data/knowledge.json
var embeddedKnowledge []byte

// General is the school-wide data used to build the system instruction.
type General struct {
	SchoolName    string   `json:"school_name"`
	ShortName     string   `json:"short_name"`
	Location      string   `json:"location"`
	Vision        string   `json:"vision"`
	RecentUpdates []string `json:"recent_updates"`
}

// Help is the canned response for help commands.
type Help struct {
	Phrases []string `json:"phrases"`
	Text    string   `json:"text"`
}

type document struct {
	General           General  `json:"general"`
	InstitutionTokens []string `json:"institution_tokens"`
	DomainKeywords    []string `json:"domain_keywords"`
	Help              Help     `json:"help"`
	Refusal           string   `json:"refusal"`
	Topics            []Topic  `json:"topics"`
}

// Base is the loaded knowledge base.
type Base struct {
	General General
	// InstitutionTokens name the institution itself ("mapoly"); used for news intent.
	InstitutionTokens []string
	// DomainKeywords are the words that make a prompt in-domain.
	DomainKeywords []string
	Help           Help
	Refusal        string
	Topics         *Table
}

// Load decodes and validates a knowledge document.
func Load(r io.Reader) (*Base, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode knowledge: %w", err)
	}

	b := &Base{
		General:           doc.General,
		InstitutionTokens: normalizeKeywords(doc.InstitutionTokens),
		DomainKeywords:    normalizeKeywords(doc.DomainKeywords),
		Help: Help{
			Phrases: normalizeKeywords(doc.Help.Phrases),
			Text:    doc.Help.Text,
		},
		Refusal: doc.Refusal,
		Topics:  NewTable(doc.Topics...),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadFile loads a knowledge document from disk.
func LoadFile(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Default returns the knowledge base compiled into the binary.
func Default() *Base {
	b, err := Load(bytes.NewReader(embeddedKnowledge))
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded document is invalid: %v", err))
	}
	return b
}

// Embedded returns the raw embedded document.
func Embedded() []byte {
	return append([]byte(nil), embeddedKnowledge...)
}

// Validate reports every consistency problem in the base.
func (b *Base) Validate() error {
	var errs []error
	if strings.TrimSpace(b.General.SchoolName) == "" {
		errs = append(errs, errors.New("general.school_name is empty"))
	}
	if strings.TrimSpace(b.General.Location) == "" {
		errs = append(errs, errors.New("general.location is empty"))
	}
	if len(b.InstitutionTokens) == 0 {
		errs = append(errs, errors.New("institution_tokens is empty"))
	}
	if len(b.DomainKeywords) == 0 {
		errs = append(errs, errors.New("domain_keywords is empty"))
	}
	if len(b.Help.Phrases) == 0 || strings.TrimSpace(b.Help.Text) == "" {
		errs = append(errs, errors.New("help phrases and text are required"))
	}
	if strings.TrimSpace(b.Refusal) == "" {
		errs = append(errs, errors.New("refusal text is empty"))
	}

	seen := make(map[string]bool)
	for i, t := range b.Topics.Topics() {
		switch {
		case t.Name == "":
			errs = append(errs, fmt.Errorf("topics[%d]: name is empty", i))
		case seen[strings.ToLower(t.Name)]:
			errs = append(errs, fmt.Errorf("topics[%d]: duplicate name %q", i, t.Name))
		}
		seen[strings.ToLower(t.Name)] = true
		if len(t.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("topic %q: no keywords", t.Name))
		}
		if len(sliceutil.Filter(t.Facts, func(s string) bool { return strings.TrimSpace(s) != "" })) == 0 {
			errs = append(errs, fmt.Errorf("topic %q: no facts", t.Name))
		}
	}
	return errors.Join(errs...)
}

// IsHelp reports whether prompt is exactly one of the help phrases, ignoring
// case, surrounding whitespace and trailing punctuation.
func (b *Base) IsHelp(prompt string) bool {
	p := strings.TrimRight(strings.ToLower(strings.TrimSpace(prompt)), "?!. ")
	for _, phrase := range b.Help.Phrases {
		if p == phrase {
			return true
		}
	}
	return false
}

// InDomain reports whether promptLower mentions the institution, a domain
// keyword, or a topic keyword long enough to gate on (see MinGateKeywordLength).
func (b *Base) InDomain(promptLower string) bool {
	if b.MentionsInstitution(promptLower) ||
		stringutil.ContainsAny(promptLower, b.DomainKeywords...) {
		return true
	}
	return b.Topics.MentionsTopic(promptLower)
}

// MentionsInstitution reports whether promptLower names the institution.
func (b *Base) MentionsInstitution(promptLower string) bool {
	return stringutil.ContainsAny(promptLower, b.InstitutionTokens...)
}

// SystemInstruction is the system message that restricts the assistant to the institution.
func (b *Base) SystemInstruction() string {
	g := b.General
	name := g.ShortName
	if name == "" {
		name = g.SchoolName
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a helpful assistant providing accurate information about %s located in %s.\n", g.SchoolName, g.Location)
	if g.Vision != "" {
		fmt.Fprintf(&sb, "Vision: %s\n", g.Vision)
	}
	if len(g.RecentUpdates) > 0 {
		sb.WriteString("\nRecent updates:\n")
		for i, u := range g.RecentUpdates {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, u)
		}
	}
	fmt.Fprintf(&sb, "\nOnly answer questions about %s. Politely decline anything unrelated. "+
		"Prefer the additional context supplied with a question over your own knowledge, and say so when it does not contain the answer.", name)
	return sb.String()
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return sliceutil.Deduplicate(out, func(s string) string { return s })
}
