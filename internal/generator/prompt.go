package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Request describes one batch of candidates to generate
type Request struct {
	Idea      string
	Count     int
	MaxLength int
	TLD       string
	Avoid     []string
}

const systemPrompt = "You are a helpful assistant that generates creative domain name suggestions in JSON format."

// BuildPrompt renders the user instruction for req
func BuildPrompt(req Request) string {
	tld := strings.TrimPrefix(strings.TrimSpace(req.TLD), ".")
	if tld == "" {
		tld = "com"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d unique and creative domain name suggestions, with 2 words, based on the following idea: %s.", req.Count, strings.TrimSpace(req.Idea))
	fmt.Fprintf(&b, " Every domain must end in .%s and be at most %d characters long including the extension.", tld, req.MaxLength)
	b.WriteString(" Prefer names that are easy to spell and pronounce.")
	if len(req.Avoid) > 0 {
		fmt.Fprintf(&b, " Please avoid these already known domains: %s.", strings.Join(req.Avoid, ", "))
	}
	b.WriteString(" Provide the domain names in a JSON format, with a key 'domain_names' and value of an array" +
		" and each suggestion as a string in the array.")
	return b.String()
}

var jsonObject = regexp.MustCompile(`\{.*\}`)

type domainNames struct {
	DomainNames []string `json:"domain_names"`
}

// ParseDomainNames pulls the {"domain_names": [...]} object out of free-form
// model output. It returns a *ParseError when none can be found.
func ParseDomainNames(content string) ([]string, error) {
	flat := strings.ReplaceAll(strings.TrimSpace(content), "\n", "")
	match := jsonObject.FindString(flat)
	if match == "" {
		return []string{}, &ParseError{Content: content, Err: errors.New("no JSON object in reply")}
	}

	var parsed domainNames
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return []string{}, &ParseError{Content: content, Err: errors.Wrap(err, "decode JSON object")}
	}
	if parsed.DomainNames == nil {
		return []string{}, &ParseError{Content: content, Err: errors.New("missing domain_names key")}
	}

	names := make([]string, 0, len(parsed.DomainNames))
	for _, n := range parsed.DomainNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}
