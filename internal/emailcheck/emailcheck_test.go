package emailcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/types"
)

// fakeResolver records lookups and replies with canned answers.
type fakeResolver struct {
	records []*net.MX
	err     error
	calls   []string
}

func (f *fakeResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	f.calls = append(f.calls, name)
	return f.records, f.err
}

func oneMX() []*net.MX {
	return []*net.MX{{Host: "mx.example.com.", Pref: 10}}
}

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		ok         bool
		wantLocal  string
		wantDomain string
	}{
		{"plain address", "user@example.com", true, "user", "example.com"},
		{"dotted local", "first.last@example.com", true, "first.last", "example.com"},
		{"plus tag", "user+tag@example.com", true, "user+tag", "example.com"},
		{"quoted local", `"odd.local"@example.com`, true, `"odd.local"`, "example.com"},
		{"quoted local escaped space", `"odd\ local"@example.com`, true, `"odd\ local"`, "example.com"},
		{"quoted local unescaped space", `"odd local"@example.com`, false, "", ""},
		{"subdomain", "a@mail.sub.example.com", true, "a", "mail.sub.example.com"},
		{"ipv4 literal", "user@[127.0.0.1]", true, "user", "[127.0.0.1]"},
		{"ipv6 literal", "user@[2001:db8::1]", true, "user", "[2001:db8::1]"},
		{"no at sign", "userexample.com", false, "", ""},
		{"space in domain", "user@ex ample.com", false, "", ""},
		{"space in local", "us er@example.com", false, "", ""},
		{"empty local", "@example.com", false, "", ""},
		{"single label domain", "user@localhost", false, "", ""},
		{"leading hyphen label", "user@-bad.example.com", false, "", ""},
		{"trailing hyphen tld", "user@example.com-", false, "", ""},
		{"bad ip literal", "user@[999.0.0.1]", false, "", ""},
		{"trailing dot domain", "user@example.com.", false, "", ""},
		{"consecutive dots local", "a..b@example.com", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, domain, ok := SplitAddress(tt.input)
			if ok != tt.ok {
				t.Fatalf("SplitAddress(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !ok {
				return
			}
			if local != tt.wantLocal || domain != tt.wantDomain {
				t.Errorf("SplitAddress(%q) = (%q, %q), want (%q, %q)",
					tt.input, local, domain, tt.wantLocal, tt.wantDomain)
			}
		})
	}
}

func TestValidate_EmptyInputSkipsLookup(t *testing.T) {
	resolver := &fakeResolver{records: oneMX()}
	checker := NewWithResolver(resolver, time.Second)

	got, err := checker.Validate(context.Background(), "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty result, got %q", got)
	}
	if len(resolver.calls) != 0 {
		t.Errorf("Expected no MX lookups for empty input, got %v", resolver.calls)
	}
}

func TestValidate_BadSyntaxSkipsLookup(t *testing.T) {
	resolver := &fakeResolver{records: oneMX()}
	checker := NewWithResolver(resolver, time.Second)

	_, err := checker.Validate(context.Background(), "not-an-address")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if ve.Kind != KindBadFormat {
		t.Errorf("Expected kind %q, got %q", KindBadFormat, ve.Kind)
	}
	if len(resolver.calls) != 0 {
		t.Errorf("Expected no MX lookups after syntax failure, got %v", resolver.calls)
	}
}

func TestValidate_DomainChecks(t *testing.T) {
	tests := []struct {
		name     string
		resolver *fakeResolver
		wantKind string
	}{
		{
			"domain with mx",
			&fakeResolver{records: oneMX()},
			"",
		},
		{
			"domain not found",
			&fakeResolver{err: &net.DNSError{Err: "no such host", Name: "example.com", IsNotFound: true}},
			KindNoDomain,
		},
		{
			"empty mx answer",
			&fakeResolver{records: nil},
			KindNoDomain,
		},
		{
			"transport error passes",
			&fakeResolver{err: &net.DNSError{Err: "server misbehaving", Name: "example.com", IsTemporary: true}},
			"",
		},
		{
			"wrapped not-found",
			&fakeResolver{err: fmt.Errorf("lookup: %w", &net.DNSError{Err: "no such host", IsNotFound: true})},
			KindNoDomain,
		},
		{
			"non-dns error passes",
			&fakeResolver{err: errors.New("connection refused")},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewWithResolver(tt.resolver, time.Second)

			got, err := checker.Validate(context.Background(), "user@example.com")
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if got != "user@example.com" {
					t.Errorf("Expected address back unchanged, got %q", got)
				}
			} else {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				var ve *types.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("Expected ValidationError, got %T", err)
				}
				if ve.Kind != tt.wantKind {
					t.Errorf("Expected kind %q, got %q", tt.wantKind, ve.Kind)
				}
			}

			if len(tt.resolver.calls) != 1 || tt.resolver.calls[0] != "example.com" {
				t.Errorf("Expected one lookup of example.com, got %v", tt.resolver.calls)
			}
		})
	}
}

func TestValidate_LookupReceivesDeadline(t *testing.T) {
	var sawDeadline bool
	resolver := resolverFunc(func(ctx context.Context, name string) ([]*net.MX, error) {
		_, sawDeadline = ctx.Deadline()
		return oneMX(), nil
	})
	checker := NewWithResolver(resolver, 250*time.Millisecond)

	if _, err := checker.Validate(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !sawDeadline {
		t.Error("Expected MX lookup context to carry a deadline")
	}
}

type resolverFunc func(ctx context.Context, name string) ([]*net.MX, error)

func (f resolverFunc) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	return f(ctx, name)
}
