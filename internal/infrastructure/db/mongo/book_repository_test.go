package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookhaven/library-system/internal/core/ports"
)

func searchPattern(t *testing.T, query bson.M) primitive.Regex {
	t.Helper()
	or, ok := query["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or with title and author clauses, got %+v", query)
	}
	title, ok := or[0].(bson.M)
	if !ok {
		t.Fatalf("expected title clause, got %+v", or[0])
	}
	pattern, ok := title["title"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on title, got %+v", title["title"])
	}
	return pattern
}

func TestListQuery_SearchMetacharactersAreLiteral(t *testing.T) {
	// Anything a caller can put in ?search= must reach Mongo as a literal
	// substring. An unbalanced "(" would otherwise make the server reject
	// the whole query, and patterns like ".*" or "(a+)+b" would let an
	// anonymous caller run arbitrary scans.
	cases := []struct {
		in   string
		want string
	}{
		{"(", `\(`},
		{"[", `\[`},
		{`\`, `\\`},
		{".*", `\.\*`},
		{"(a+)+b", `\(a\+\)\+b`},
		{"c++ primer", `c\+\+ primer`},
	}

	for _, tc := range cases {
		query := listQuery(ports.ListBooksFilter{Search: tc.in})
		pattern := searchPattern(t, query)
		if pattern.Pattern != tc.want {
			t.Fatalf("search %q: expected pattern %q, got %q", tc.in, tc.want, pattern.Pattern)
		}
		if pattern.Options != "i" {
			t.Fatalf("search %q: expected case-insensitive match, got options %q", tc.in, pattern.Options)
		}
	}
}

func TestListQuery_PlainSearchUnchanged(t *testing.T) {
	query := listQuery(ports.ListBooksFilter{Search: "tolkien"})
	pattern := searchPattern(t, query)
	if pattern.Pattern != "tolkien" {
		t.Fatalf("plain search must pass through, got %q", pattern.Pattern)
	}
}

func TestListQuery_CategoryAndEmptySearch(t *testing.T) {
	query := listQuery(ports.ListBooksFilter{Category: "fantasy"})
	if query["category"] != "fantasy" {
		t.Fatalf("expected category filter, got %+v", query)
	}
	if _, ok := query["$or"]; ok {
		t.Fatalf("empty search must not add a regex clause: %+v", query)
	}

	if got := listQuery(ports.ListBooksFilter{}); len(got) != 0 {
		t.Fatalf("no filters must yield an empty query, got %+v", got)
	}
}
