package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/texasiusc/resources/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"date": views.FormatDate,
}).ParseFS(templateFS, "templates/*.html"))

// PageOptions configures the HTML pages.
type PageOptions struct {
	SiteTitle string
	SiteIntro string
	// Revalidate is advertised to shared caches on detail pages; zero disables it.
	Revalidate time.Duration
}

// RegisterPageRoutes serves the listing at "/" and post details at "/:slug",
// plus the embedded static assets under /static.
func RegisterPageRoutes(r *gin.Engine, opts PageOptions, search views.Searcher, detail *views.Detail) {
	r.SetHTMLTemplate(pageTemplates)

	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	// Each request is its own listing instance; "?q=" is a search submission.
	r.GET("/", func(c *gin.Context) {
		l := views.NewListing(search)
		var st views.ListingState
		if q, ok := c.GetQuery("q"); ok {
			st = l.Submit(c.Request.Context(), q)
		} else {
			st = l.Load(c.Request.Context())
		}
		code := http.StatusOK
		if st.Status == views.StatusError {
			code = http.StatusInternalServerError
		}
		c.HTML(code, "listing.html", gin.H{"Site": opts.SiteTitle, "Title": "", "Intro": opts.SiteIntro, "State": st})
	})

	r.GET("/:slug", func(c *gin.Context) {
		page := detail.Load(c.Request.Context(), c.Param("slug"))
		code := http.StatusOK
		title := page.Title
		switch page.Status {
		case views.DetailNotFound:
			code, title = http.StatusNotFound, "Post Not Found"
		case views.DetailError:
			code, title = http.StatusInternalServerError, "Error"
		default:
			if opts.Revalidate > 0 {
				c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate", int(opts.Revalidate.Seconds())))
			}
		}
		c.HTML(code, "detail.html", gin.H{"Site": opts.SiteTitle, "Title": title, "Page": page})
	})
}
