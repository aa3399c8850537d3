package objectstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestKeyFromURL(t *testing.T) {
	l := Locator{Bucket: "reports", Region: "ap-south-1"}
	key := "2021-2025/BCA/Third Semester/top_five.xlsx"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare key", key, key},
		{"bare key leading slash", "/" + key, key},
		{"s3 uri", "s3://reports/" + key, key},
		{"s3 uri other bucket", "s3://b/p1.xlsx", "p1.xlsx"},
		{"virtual hosted", "https://reports.s3.ap-south-1.amazonaws.com/" + key, key},
		{"virtual hosted escaped", "https://reports.s3.ap-south-1.amazonaws.com/2021-2025/BCA/Third%20Semester/top_five.xlsx", key},
		{"path style", "https://s3.ap-south-1.amazonaws.com/reports/" + key, key},
		{"query stripped", "https://reports.s3.ap-south-1.amazonaws.com/a/b.xlsx?versionId=1", "a/b.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.KeyFromURL(tt.in)
			if err != nil {
				t.Fatalf("KeyFromURL(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("KeyFromURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyFromURLUnparsable(t *testing.T) {
	l := Locator{Bucket: "reports", Region: "ap-south-1"}
	for _, in := range []string{"", "   ", "s3://reports", "https://example.org/a.xlsx", "ftp://x/y", "https://reports.s3.ap-south-1.amazonaws.com/"} {
		if _, err := l.KeyFromURL(in); !errors.Is(err, ErrUnparsableLocation) {
			t.Fatalf("KeyFromURL(%q) err = %v, want ErrUnparsableLocation", in, err)
		}
	}
}

func TestKeyFromURLCustomEndpoint(t *testing.T) {
	l := Locator{Bucket: "reports", Region: "us-east-1", Endpoint: "http://localhost:9000"}
	got, err := l.KeyFromURL("http://localhost:9000/reports/x/y.xlsx")
	if err != nil || got != "x/y.xlsx" {
		t.Fatalf("got %q, %v", got, err)
	}
	if u := l.URLForKey("/x/y.xlsx"); u != "http://localhost:9000/reports/x/y.xlsx" {
		t.Fatalf("URLForKey = %q", u)
	}
}

func TestVariantsRoundTrip(t *testing.T) {
	l := Locator{Bucket: "reports", Region: "ap-south-1", Endpoint: "http://minio:9000"}
	key := "2021-2025/BCA/Third Semester/top_five.xlsx"

	variants := l.Variants(key)
	if variants[0] != key {
		t.Fatalf("first variant = %q, want bare key", variants[0])
	}
	seen := map[string]bool{}
	for _, v := range variants {
		if seen[v] {
			t.Fatalf("duplicate variant %q", v)
		}
		seen[v] = true
		got, err := l.KeyFromURL(v)
		if err != nil || got != key {
			t.Fatalf("variant %q resolves to %q, %v", v, got, err)
		}
	}
	if !seen[l.URLForKey(key)] {
		t.Fatal("canonical URL missing from variants")
	}
}

func TestURLForKeyDefault(t *testing.T) {
	l := Locator{Bucket: "reports", Region: "ap-south-1"}
	if got := l.URLForKey("a/b.xlsx"); got != "https://reports.s3.ap-south-1.amazonaws.com/a/b.xlsx" {
		t.Fatalf("URLForKey = %q", got)
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"https://reports.s3.ap-south-1.amazonaws.com/2021/BCA/Sem/top.xlsx": "top.xlsx",
		"s3://b/p1.xlsx": "p1.xlsx",
		"plain.xlsx":     "plain.xlsx",
		"dir/":           "dir",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&types.NoSuchKey{}) {
		t.Fatal("NoSuchKey should be not found")
	}
	if !isNotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NotFound"})) {
		t.Fatal("generic NotFound should be not found")
	}
	if isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}) {
		t.Fatal("AccessDenied is not a not-found error")
	}
}
