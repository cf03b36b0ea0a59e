// =============================================================================
// Spreadsheet to JSON Converter - E-mail Validation
// =============================================================================
//
// This module validates buyer e-mail addresses in two short-circuiting
// stages:
//
//   1. Syntax: the address is split on the last '@'. The local part must
//      match an RFC-5322-derived dot-atom or quoted-string grammar; the
//      domain part must be either a dotted-label hostname (labels of 1-63
//      alphanumeric/hyphen characters) or a bracketed IP literal holding a
//      valid IPv4 or IPv6 address (SMTP 4.1.3).
//   2. Existence: the domain must resolve to at least one mail-exchange
//      record. The resolver sits behind an interface so tests can fake it,
//      and every lookup is bounded by a configurable timeout.
//
// The local/domain grammars follow Django's EmailValidator patterns:
// https://github.com/django/django/blob/master/django/core/validators.py
//
// Internationalized domain names are not converted to punycode here; that is
// deferred upstream. An empty input is accepted without running either stage,
// since the buyer e-mail is optional at the business level.
//
// =============================================================================

package emailcheck

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/types"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Validation failure kinds surfaced by Validate.
const (
	KindBadFormat = "invalid e-mail format"
	KindNoDomain  = "domain does not exist or has no mail-exchange record"
)

// =============================================================================
// SYNTAX GRAMMAR
// =============================================================================

var (
	// localRegexp matches the local part: dot-atom or quoted-string.
	localRegexp = regexp.MustCompile(
		`(?i)^[-!#$%&'*+/=?^_` + "`" + `{}|~0-9A-Z]+(\.[-!#$%&'*+/=?^_` + "`" + `{}|~0-9A-Z]+)*\z` +
			`|^"([\x01-\x08\x0b\x0c\x0e-\x1f!#-\[\]-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*"\z`)

	// domainRegexp matches a dotted hostname. Labels are capped at 63
	// characters (RFC 1034) and may not start or end with a hyphen; the
	// final label is 2-63 characters and may not end with a hyphen.
	domainRegexp = regexp.MustCompile(
		`(?i)^(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z0-9-]{1,62}[A-Z0-9]\z`)

	// literalRegexp matches the bracketed address-literal form and captures
	// the interior for IP parsing.
	literalRegexp = regexp.MustCompile(`^\[([A-Fa-f0-9:.]+)\]\z`)
)

// SplitAddress performs the syntax stage. It returns the local and domain
// parts when the address is well-formed; ok is false otherwise. A syntax
// miss is a plain "no match", not an error; callers escalate it.
func SplitAddress(input string) (local, domain string, ok bool) {
	at := strings.LastIndex(input, "@")
	if at < 0 {
		return "", "", false
	}

	local, domain = input[:at], input[at+1:]

	if !localRegexp.MatchString(local) {
		return "", "", false
	}
	if !validDomain(domain) {
		return "", "", false
	}

	return local, domain, true
}

// validDomain checks the domain part: hostname grammar or IP literal.
func validDomain(domain string) bool {
	if domainRegexp.MatchString(domain) {
		return true
	}

	if m := literalRegexp.FindStringSubmatch(domain); m != nil {
		_, err := netip.ParseAddr(m[1])
		return err == nil
	}

	return false
}

// =============================================================================
// CHECKER
// =============================================================================

// MXResolver resolves mail-exchange records for a domain. *net.Resolver
// satisfies it; tests substitute a fake.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Checker validates e-mail addresses: syntax first, then domain existence.
type Checker struct {
	resolver MXResolver
	timeout  time.Duration
}

// New creates a Checker backed by the default system resolver. Each MX
// lookup is bounded by the given timeout.
func New(timeout time.Duration) *Checker {
	return NewWithResolver(net.DefaultResolver, timeout)
}

// NewWithResolver creates a Checker with a custom resolver.
func NewWithResolver(resolver MXResolver, timeout time.Duration) *Checker {
	return &Checker{resolver: resolver, timeout: timeout}
}

// Validate checks an e-mail address and returns it unchanged on success.
// An empty input is accepted as an empty result without invoking either
// stage. Failures are ValidationErrors of kind KindBadFormat or
// KindNoDomain.
func (c *Checker) Validate(ctx context.Context, input string) (string, error) {
	if input == "" {
		return "", nil
	}

	_, domain, ok := SplitAddress(input)
	if !ok {
		return "", types.NewValidationError(KindBadFormat)
	}

	if err := c.checkDomainMX(ctx, domain); err != nil {
		return "", err
	}

	return input, nil
}

// checkDomainMX verifies that the domain can receive mail. A non-existent
// domain and an empty answer both fail; any other lookup error (timeout,
// server failure, ...) passes. Treating transport errors as success is a
// documented limitation of the validation contract: flag it before
// strengthening, since callers rely on batches not failing on resolver
// outages.
func (c *Checker) checkDomainMX(ctx context.Context, domain string) error {
	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(lookupCtx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return types.NewValidationError(KindNoDomain)
		}
		return nil
	}

	if len(records) == 0 {
		return types.NewValidationError(KindNoDomain)
	}

	return nil
}
