package entity

import (
	"errors"
	"math"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "ratio", Message: "out of range"}

	assert.Equal(t, "validation error on field 'ratio': out of range", err.Error())
	assert.True(t, errors.Is(err, ErrValidationFailed))

	var ve *ValidationError
	wrapped := errors.Join(errors.New("context"), err)
	require.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "ratio", ve.Field)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https URL", "https://example.com/feed", false},
		{"valid http URL", "http://example.com/feed", false},
		{"valid URL with query", "https://example.com/feed?param=value", false},
		{"empty URL", "", true},
		{"invalid scheme - ftp", "ftp://example.com/feed", true},
		{"invalid scheme - file", "file:///etc/passwd", true},
		{"no host", "https://", true},
		{"no scheme", "example.com", true},
		{"URL exceeding maximum length", "https://example.com/" + string(make([]byte, 2050)), true},
		{"localhost URL", "http://localhost/feed", true},
		{"loopback IP", "http://127.0.0.1/feed", true},
		{"private IP", "http://192.168.1.10/feed", true},
		{"cloud metadata", "http://169.254.169.254/latest", true},
		{"localhost subdomain", "http://api.localhost/feed", true},
		{"unspecified", "http://0.0.0.0:8080/", true},
		{"mapped private IPv6", "http://[::ffff:10.0.0.1]/feed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsPrivateAddr(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"::1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"172.32.0.1", false},
		{"192.168.0.1", true},
		{"169.254.169.254", true},
		{"fd12:3456::1", true},
		{"fe80::1", true},
		{"::ffff:192.168.1.1", true},
		{"0.0.0.0", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, isPrivateAddr(netip.MustParseAddr(tt.ip)))
		})
	}
}

func TestValidateRatio(t *testing.T) {
	for _, r := range []float64{0.01, 0.1, 0.5, 1} {
		assert.NoError(t, ValidateRatio(r), "ratio %v", r)
	}
	for _, r := range []float64{0, -0.1, 1.01, math.NaN(), math.Inf(1)} {
		err := ValidateRatio(r)
		assert.ErrorIs(t, err, ErrValidationFailed, "ratio %v", r)
	}
}

func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name     string
		source   Source
		wantErr  bool
		wantName string
	}{
		{
			name:     "feed with name",
			source:   Source{Name: "Go Blog", Kind: SourceKindFeed, Location: "https://go.dev/blog/feed.atom"},
			wantName: "Go Blog",
		},
		{
			name:     "mailbox defaults name to location",
			source:   Source{Kind: SourceKindMailbox, Location: "/var/mail/alice", Window: 24 * time.Hour},
			wantName: "/var/mail/alice",
		},
		{
			name:     "stdin file",
			source:   Source{Kind: SourceKindFile, Location: "-"},
			wantName: "-",
		},
		{
			name: "page with selectors",
			source: Source{Kind: SourceKindPage, Location: "https://example.com/blog",
				Selectors: &PageSelectors{Item: "article", Title: "h2", Link: "a"}},
			wantName: "https://example.com/blog",
		},
		{
			name:    "page without selectors",
			source:  Source{Kind: SourceKindPage, Location: "https://example.com/blog"},
			wantErr: true,
		},
		{
			name: "page without link selector",
			source: Source{Kind: SourceKindPage, Location: "https://example.com/blog",
				Selectors: &PageSelectors{Item: "article", Title: "h2"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			source:  Source{Kind: "imap", Location: "imap.example.com"},
			wantErr: true,
		},
		{
			name:    "url with bad scheme",
			source:  Source{Kind: SourceKindURL, Location: "ftp://example.com/a"},
			wantErr: true,
		},
		{
			name:    "file without location",
			source:  Source{Kind: SourceKindFile},
			wantErr: true,
		},
		{
			name:    "negative window",
			source:  Source{Kind: SourceKindMailbox, Location: "inbox.mbox", Window: -time.Hour},
			wantErr: true,
		},
		{
			name:    "ratio above one",
			source:  Source{Kind: SourceKindFile, Location: "a.txt", Ratio: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.source
			err := src.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name)
		})
	}
}

func TestDigest_Empty(t *testing.T) {
	assert.True(t, Digest{}.Empty())
	assert.False(t, Digest{Summary: "Cats are great."}.Empty())
}
