// Package wiki implements the wiki request handlers on top of an entry
// store. Handlers do not touch HTTP; they return a Response that the web
// layer turns into a page, a redirect or a 404.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"

	"github.com/imrenagi/go-wiki/entry"
	"github.com/imrenagi/go-wiki/markdown"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrEmptyStore = errors.New("the wiki has no entries")

// EmptyStoreMessage is shown when a random entry is requested from an empty
// wiki.
const EmptyStoreMessage = "The Wiki has no entries yet."

func NotFoundMessage(title string) string {
	return fmt.Sprintf("%s entry was not found in the Wiki.", title)
}

func AlreadyExistsMessage(title string) string {
	return fmt.Sprintf("%s entry already exists!", title)
}

// RandomSource picks an index in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

type globalRandom struct{}

func (globalRandom) Intn(n int) int {
	return rand.Intn(n)
}

type Options struct {
	Random RandomSource
	Rules  FormRules
}

type Option func(*Options)

func WithRandom(r RandomSource) Option {
	return func(o *Options) {
		o.Random = r
	}
}

func WithFormRules(rules FormRules) Option {
	return func(o *Options) {
		o.Rules = rules
	}
}

type Wiki struct {
	store    entry.Store
	renderer markdown.Renderer
	random   RandomSource
	rules    FormRules
}

func New(store entry.Store, renderer markdown.Renderer, opts ...Option) *Wiki {
	o := Options{
		Random: globalRandom{},
		Rules:  DefaultFormRules(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Wiki{
		store:    store,
		renderer: renderer,
		random:   o.Random,
		rules:    o.Rules,
	}
}

func (w *Wiki) Rules() FormRules {
	return w.rules
}

func (w *Wiki) Index(ctx context.Context) (Response, error) {
	titles, err := w.store.List(ctx)
	if err != nil {
		return Response{}, err
	}
	return render(http.StatusOK, PageIndex, PageData{Entries: titles}), nil
}

func (w *Wiki) View(ctx context.Context, title string) (Response, error) {
	content, ok, err := w.store.Get(ctx, title)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		return notFound(NotFoundMessage(title)), nil
	}

	html, err := w.renderer.Render([]byte(content))
	if err != nil {
		return Response{}, fmt.Errorf("render entry %q: %w", title, err)
	}
	return render(http.StatusOK, PageEntry, PageData{
		Title: title,
		HTML:  string(html),
	}), nil
}

// Search redirects to the entry whose title equals query, or lists every
// title containing query.
func (w *Wiki) Search(ctx context.Context, query string) (Response, error) {
	_, ok, err := w.store.Get(ctx, query)
	if err != nil {
		return Response{}, err
	}
	if ok {
		return redirect(query), nil
	}

	matches, err := w.Matching(ctx, query)
	if err != nil {
		return Response{}, err
	}
	return render(http.StatusOK, PageSearch, PageData{
		Query:   query,
		Entries: matches,
	}), nil
}

// Matching returns the titles containing query, in store order. Matching is
// case sensitive.
func (w *Wiki) Matching(ctx context.Context, query string) ([]string, error) {
	titles, err := w.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(titles, func(title string, _ int) bool {
		return strings.Contains(title, query)
	}), nil
}

type CreateOutcome int

const (
	CreateCreated CreateOutcome = iota
	CreateDuplicate
	CreateInvalid
)

type CreateResult struct {
	Outcome CreateOutcome
	Title   string
	Errors  FieldErrors
}

// Create validates form and stores it as a new entry. A title that is
// already taken yields CreateDuplicate and leaves the store untouched.
func (w *Wiki) Create(ctx context.Context, form NewEntryForm) (CreateResult, error) {
	if errs := form.Validate(w.rules); !errs.Valid() {
		return CreateResult{Outcome: CreateInvalid, Title: form.Title, Errors: errs}, nil
	}

	titles, err := w.store.List(ctx)
	if err != nil {
		return CreateResult{}, err
	}
	if lo.Contains(titles, form.Title) {
		log.Ctx(ctx).Debug().Str("title", form.Title).Msg("entry already exists")
		return CreateResult{
			Outcome: CreateDuplicate,
			Title:   form.Title,
			Errors:  FieldErrors{"title": AlreadyExistsMessage(form.Title)},
		}, nil
	}

	if err := w.store.Save(ctx, form.Title, form.Content); err != nil {
		return CreateResult{}, err
	}
	log.Ctx(ctx).Info().Str("title", form.Title).Msg("entry created")
	return CreateResult{Outcome: CreateCreated, Title: form.Title}, nil
}

func (w *Wiki) NewEntry(ctx context.Context, req Request) (Response, error) {
	if !req.Submitted {
		return render(http.StatusOK, PageNew, PageData{}), nil
	}

	form := ParseNewEntryForm(url.Values(req.Form))
	result, err := w.Create(ctx, form)
	if err != nil {
		return Response{}, err
	}

	data := PageData{
		Form:   FormData{Title: form.Title, Content: form.Content},
		Errors: result.Errors,
	}
	switch result.Outcome {
	case CreateDuplicate:
		return render(http.StatusConflict, PageNew, data), nil
	case CreateInvalid:
		return render(http.StatusBadRequest, PageNew, data), nil
	}
	return redirect(result.Title), nil
}

// EditEntry replaces the content of title on submission. There is no
// existence check, so submitting an edit for a missing title creates it.
func (w *Wiki) EditEntry(ctx context.Context, title string, req Request) (Response, error) {
	if entry.ValidateTitle(title) != nil {
		return notFound(NotFoundMessage(title)), nil
	}
	if !req.Submitted {
		content, _, err := w.store.Get(ctx, title)
		if err != nil {
			return Response{}, err
		}
		return render(http.StatusOK, PageEdit, PageData{
			Title: title,
			Form:  FormData{Title: title, Content: content},
		}), nil
	}

	form := ParseEditEntryForm(url.Values(req.Form))
	if errs := form.Validate(w.rules); !errs.Valid() {
		return render(http.StatusBadRequest, PageEdit, PageData{
			Title:  title,
			Form:   FormData{Title: title, Content: form.Content},
			Errors: errs,
		}), nil
	}

	if err := w.store.Save(ctx, title, form.Content); err != nil {
		return Response{}, err
	}
	log.Ctx(ctx).Info().Str("title", title).Msg("entry updated")
	return redirect(title), nil
}

// PickRandom returns a title chosen uniformly from the store.
func (w *Wiki) PickRandom(ctx context.Context) (string, error) {
	titles, err := w.store.List(ctx)
	if err != nil {
		return "", err
	}
	if len(titles) == 0 {
		return "", ErrEmptyStore
	}
	return titles[w.random.Intn(len(titles))], nil
}

func (w *Wiki) Random(ctx context.Context) (Response, error) {
	title, err := w.PickRandom(ctx)
	if errors.Is(err, ErrEmptyStore) {
		return notFound(EmptyStoreMessage), nil
	}
	if err != nil {
		return Response{}, err
	}
	return redirect(title), nil
}
