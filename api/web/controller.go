// Package web serves the wiki as HTML pages.
package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/imrenagi/go-wiki/wiki"
	"github.com/rs/zerolog/log"
)

const maxFormBytes = 1 << 20 // 1MB

type Controller struct {
	wiki  *wiki.Wiki
	pages *Pages
}

func NewController(w *wiki.Wiki, pages *Pages) Controller {
	return Controller{
		wiki:  w,
		pages: pages,
	}
}

// view is what every page template receives.
type view struct {
	wiki.PageData
	Body           template.HTML
	Message        string
	TitleMaxLength int
}

func (c *Controller) Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := c.wiki.Index(r.Context())
		c.respond(w, r, resp, err)
	}
}

func (c *Controller) Entry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := mux.Vars(r)["title"]
		log.Ctx(r.Context()).Debug().Str("title", title).Msg("view entry")
		resp, err := c.wiki.View(r.Context(), title)
		c.respond(w, r, resp, err)
	}
}

func (c *Controller) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		log.Ctx(r.Context()).Debug().Str("query", query).Msg("search entries")
		resp, err := c.wiki.Search(r.Context(), query)
		c.respond(w, r, resp, err)
	}
}

func (c *Controller) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := c.formRequest(w, r)
		if !ok {
			return
		}
		resp, err := c.wiki.NewEntry(r.Context(), req)
		c.respond(w, r, resp, err)
	}
}

func (c *Controller) Edit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := c.formRequest(w, r)
		if !ok {
			return
		}
		resp, err := c.wiki.EditEntry(r.Context(), mux.Vars(r)["title"], req)
		c.respond(w, r, resp, err)
	}
}

func (c *Controller) Random() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := c.wiki.Random(r.Context())
		c.respond(w, r, resp, err)
	}
}

func (c *Controller) formRequest(w http.ResponseWriter, r *http.Request) (wiki.Request, bool) {
	if r.Method != http.MethodPost {
		return wiki.Request{}, true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("error parsing the form")
		c.writeError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return wiki.Request{}, false
	}
	return wiki.Request{Submitted: true, Form: r.PostForm}, true
}

func (c *Controller) respond(w http.ResponseWriter, r *http.Request, resp wiki.Response, err error) {
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		c.writeError(w, r, http.StatusInternalServerError, "The wiki could not complete your request.")
		return
	}

	switch resp.Kind {
	case wiki.KindRedirect:
		http.Redirect(w, r, EntryURL(resp.Target), http.StatusFound)
	case wiki.KindNotFound:
		c.writePage(w, r, http.StatusNotFound, pageNotFound, view{Message: resp.Message})
	default:
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.writePage(w, r, status, string(resp.Page), view{
			PageData:       resp.Data,
			Body:           template.HTML(resp.Data.HTML),
			TitleMaxLength: c.wiki.Rules().TitleMaxLength,
		})
	}
}

func (c *Controller) writeError(w http.ResponseWriter, r *http.Request, code int, message string) {
	c.writePage(w, r, code, pageError, view{Message: message})
}

// writePage renders into a buffer first so a failing template never leaves
// a half-written response.
func (c *Controller) writePage(w http.ResponseWriter, r *http.Request, code int, page string, data view) {
	var buf bytes.Buffer
	if err := c.pages.Render(&buf, page, data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	buf.WriteTo(w)
}
