package checker

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"

	"github.com/berckan/domainfinder/internal/models"
)

// Lookup fetches the raw WHOIS record for a domain.
// *whois.Client satisfies it.
type Lookup interface {
	Whois(domain string, servers ...string) (string, error)
}

// ParseFunc turns raw WHOIS text into a structured record
type ParseFunc func(text string) (whoisparser.WhoisInfo, error)

// Checker handles domain availability checks
type Checker struct {
	lookup Lookup
	parse  ParseFunc
	log    *zap.Logger
}

// New creates a new domain checker
func New(lookup Lookup, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{
		lookup: lookup,
		parse:  whoisparser.Parse,
		log:    log,
	}
}

// WithParser replaces the WHOIS parser, mostly for tests
func (c *Checker) WithParser(parse ParseFunc) *Checker {
	c.parse = parse
	return c
}

// NewWhoisClient builds the WHOIS client, optionally dialing through a proxy
// given as a URL such as socks5://127.0.0.1:1080.
func NewWhoisClient(timeout time.Duration, proxyURL string) (*whois.Client, error) {
	client := whois.NewClient()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if proxyURL == "" {
		return client, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse whois proxy %q", proxyURL)
	}
	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, errors.Wrapf(err, "build whois proxy dialer %q", proxyURL)
	}
	client.SetDialer(dialer)
	return client, nil
}

// Phrases that indicate the domain IS registered, checked first
var takenPatterns = []string{
	"registrar:",
	"registrant:",
	"creation date:",
	"created:",
	"registry expiry date:",
	"expiration date:",
	"name server:",
	"nameserver:",
	"nserver:",
	"registrar iana id:",
	"domain status:",
}

// Phrases that indicate the registry has no record for the domain
var availablePatterns = []string{
	"no match for",
	"not found",
	"no entries found",
	"domain not found",
	"no data found",
	"status: free",
	"status: available",
	"no object found",
	"object does not exist",
	"nothing found",
	"is available for registration",
	"the queried object does not exist",
	"no such domain",
	"domain name has not been registered",
	"no matching record",
}

// Check verifies if a single domain is available using WHOIS.
// Lookup and parse failures that are not a "not found" answer yield
// StatusError, never Available or Taken.
func (c *Checker) Check(ctx context.Context, domain string) models.DomainResult {
	domain = strings.ToLower(strings.TrimSpace(domain))
	result := models.DomainResult{
		Domain:    domain,
		CheckedAt: time.Now(),
	}

	if err := ctx.Err(); err != nil {
		return errorResult(result, err)
	}

	raw, err := c.lookup.Whois(domain)
	if err != nil {
		c.log.Debug("whois lookup failed", zap.String("domain", domain), zap.Error(err))
		return errorResult(result, errors.Wrap(err, "whois lookup"))
	}

	info, err := c.parse(raw)
	switch {
	case err == nil:
		if info.Domain != nil && info.Domain.Domain != "" {
			result.Status = models.StatusTaken
		} else {
			result.Status = models.StatusAvailable
		}
	case errors.Is(err, whoisparser.ErrNotFoundDomain):
		// Unregistered names have no registry record to parse.
		result.Status = models.StatusAvailable
	case errors.Is(err, whoisparser.ErrReservedDomain),
		errors.Is(err, whoisparser.ErrPremiumDomain),
		errors.Is(err, whoisparser.ErrBlockedDomain):
		result.Status = models.StatusTaken
	case errors.Is(err, whoisparser.ErrDomainDataInvalid):
		result.Status = classifyRaw(raw)
		if result.Status == models.StatusError {
			result.Error = err.Error()
		}
	default:
		return errorResult(result, err)
	}

	c.log.Debug("domain checked", zap.String("domain", domain), zap.String("status", string(result.Status)))
	return result
}

// classifyRaw falls back to phrase matching when the parser rejects the text
func classifyRaw(raw string) models.DomainStatus {
	lower := strings.ToLower(raw)
	if strings.TrimSpace(lower) == "" {
		return models.StatusError
	}

	// FIRST: registration markers are the more reliable signal
	for _, pattern := range takenPatterns {
		if strings.Contains(lower, pattern) {
			return models.StatusTaken
		}
	}
	if strings.Contains(lower, "this name is reserved") {
		return models.StatusTaken
	}

	for _, pattern := range availablePatterns {
		if strings.Contains(lower, pattern) {
			return models.StatusAvailable
		}
	}

	return models.StatusError
}

func errorResult(result models.DomainResult, err error) models.DomainResult {
	result.Status = models.StatusError
	result.Error = err.Error()
	return result
}
