package post

import "strings"

// Params are named scalar query parameters. Stores pass them out-of-band from
// the query text so values are never interpreted as query syntax.
type Params map[string]any

// Query is one fixed query shape. Name identifies the shape for stores that
// evaluate it natively (fixture, Mongo); GROQ is the text sent to the hosted
// repository. Cached marks shapes whose results may be served stale for the
// configured revalidation window.
type Query struct {
	Name   string
	GROQ   string
	Cached bool
}

const summaryProjection = `{
  _id,
  title,
  slug,
  publishedAt,
  tags
}`

var (
	// PostBySlug fetches one full document; params: slug.
	PostBySlug = Query{
		Name: "postBySlug",
		GROQ: `*[_type == "post" && slug.current == $slug][0]{
  _id,
  title,
  slug,
  publishedAt,
  tags,
  image,
  body
}`,
		Cached: true,
	}

	// AllPosts fetches every post's summary fields, unfiltered and unpaginated.
	AllPosts = Query{
		Name: "allPosts",
		GROQ: `*[_type == "post"]` + summaryProjection,
	}

	// SearchPosts fetches summaries of posts whose title or body text matches
	// $pattern, or whose tags contain $term; params: pattern, term.
	SearchPosts = Query{
		Name: "searchPosts",
		GROQ: `*[
  _type == "post" &&
  (title match $pattern || $term in tags || body[].children[].text match $pattern)
]` + summaryProjection,
	}

	// AllPostsFull fetches every full document. Used by the mirror command.
	AllPostsFull = Query{
		Name: "allPostsFull",
		GROQ: `*[_type == "post"]{
  _id,
  _type,
  title,
  slug,
  publishedAt,
  tags,
  image,
  body
}`,
	}
)

// SlugParams binds the slug for PostBySlug.
func SlugParams(slug string) Params {
	return Params{"slug": slug}
}

// SearchParams binds a search term for SearchPosts. The pattern is the term
// with a trailing wildcard; the tag comparison uses the bare term.
func SearchParams(term string) Params {
	term = strings.TrimSpace(term)
	return Params{"pattern": term + "*", "term": term}
}
