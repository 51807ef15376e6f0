package wiki_test

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sort"
	"testing"

	"github.com/imrenagi/go-wiki/markdown"
	. "github.com/imrenagi/go-wiki/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveCall struct {
	title   string
	content string
}

func newFakeStore(m map[string]string) *fakeStore {
	return &fakeStore{
		entries: m,
	}
}

type fakeStore struct {
	entries map[string]string
	saves   []saveCall
	err     error
}

func (s *fakeStore) List(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var titles []string
	for title := range s.entries {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *fakeStore) Get(ctx context.Context, title string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	content, exists := s.entries[title]
	return content, exists, nil
}

func (s *fakeStore) Save(ctx context.Context, title, content string) error {
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, saveCall{title: title, content: content})
	s.entries[title] = content
	return nil
}

type fixedRandom int

func (r fixedRandom) Intn(n int) int {
	return int(r) % n
}

func newWiki(s *fakeStore, opts ...Option) *Wiki {
	return New(s, markdown.NewGoldmarkRenderer(), opts...)
}

func submit(values map[string][]string) Request {
	return Request{Submitted: true, Form: values}
}

func TestIndex(t *testing.T) {
	t.Run("Index lists every entry", func(t *testing.T) {
		w := newWiki(newFakeStore(map[string]string{"entry_2": "b", "entry_1": "a"}))

		resp, err := w.Index(context.Background())
		require.NoError(t, err)
		assert.Equal(t, KindRender, resp.Kind)
		assert.Equal(t, PageIndex, resp.Page)
		assert.Equal(t, []string{"entry_1", "entry_2"}, resp.Data.Entries)
	})

	t.Run("Storage errors are returned to the caller", func(t *testing.T) {
		s := newFakeStore(map[string]string{})
		s.err = errors.New("permission denied")

		_, err := newWiki(s).Index(context.Background())
		assert.ErrorIs(t, err, s.err)
	})
}

func TestView(t *testing.T) {
	t.Run("Existing entries are rendered to HTML", func(t *testing.T) {
		s := newFakeStore(map[string]string{"Go": "# Go\n\n**fast**"})

		resp, err := newWiki(s).View(context.Background(), "Go")
		require.NoError(t, err)
		assert.Equal(t, KindRender, resp.Kind)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, PageEntry, resp.Page)
		assert.Equal(t, "Go", resp.Data.Title)
		assert.Contains(t, resp.Data.HTML, "<strong>fast</strong>")
		// the stored markdown is not altered by rendering
		assert.Equal(t, "# Go\n\n**fast**", s.entries["Go"])
	})

	t.Run("Missing entries produce a not found response with a message", func(t *testing.T) {
		resp, err := newWiki(newFakeStore(map[string]string{})).View(context.Background(), "test_title")
		require.NoError(t, err)
		assert.Equal(t, KindNotFound, resp.Kind)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "test_title entry was not found in the Wiki.", resp.Message)
	})
}

func TestSearch(t *testing.T) {
	t.Run("An exact match redirects to the entry", func(t *testing.T) {
		s := newFakeStore(map[string]string{"test_entry": "x"})

		resp, err := newWiki(s).Search(context.Background(), "test_entry")
		require.NoError(t, err)
		assert.Equal(t, KindRedirect, resp.Kind)
		assert.Equal(t, "test_entry", resp.Target)
	})

	t.Run("A partial query lists only the titles containing it", func(t *testing.T) {
		s := newFakeStore(map[string]string{"entry_1": "a", "entry_2": "b"})

		resp, err := newWiki(s).Search(context.Background(), "try_1")
		require.NoError(t, err)
		assert.Equal(t, KindRender, resp.Kind)
		assert.Equal(t, PageSearch, resp.Page)
		assert.Equal(t, "try_1", resp.Data.Query)
		assert.Equal(t, []string{"entry_1"}, resp.Data.Entries)
	})

	t.Run("Multiple matches are all returned", func(t *testing.T) {
		s := newFakeStore(map[string]string{"entry_1": "a", "entry_2": "b", "other": "c"})

		resp, err := newWiki(s).Search(context.Background(), "entry")
		require.NoError(t, err)
		assert.Equal(t, []string{"entry_1", "entry_2"}, resp.Data.Entries)
	})

	t.Run("Matching is case sensitive", func(t *testing.T) {
		s := newFakeStore(map[string]string{"Python": "a"})

		resp, err := newWiki(s).Search(context.Background(), "python")
		require.NoError(t, err)
		assert.Equal(t, KindRender, resp.Kind)
		assert.Empty(t, resp.Data.Entries)
	})
}

func TestNewEntry(t *testing.T) {
	t.Run("A non-submission request returns an empty form", func(t *testing.T) {
		resp, err := newWiki(newFakeStore(map[string]string{})).NewEntry(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, KindRender, resp.Kind)
		assert.Equal(t, PageNew, resp.Page)
		assert.Equal(t, FormData{}, resp.Data.Form)
		assert.Empty(t, resp.Data.Errors)
	})

	t.Run("A valid submission saves the entry and redirects to it", func(t *testing.T) {
		s := newFakeStore(map[string]string{})

		resp, err := newWiki(s).NewEntry(context.Background(), submit(map[string][]string{
			"title":   {"entry_1"},
			"content": {"test_content"},
		}))
		require.NoError(t, err)
		assert.Equal(t, []saveCall{{title: "entry_1", content: "test_content"}}, s.saves)
		assert.Equal(t, KindRedirect, resp.Kind)
		assert.Equal(t, "entry_1", resp.Target)
	})

	t.Run("A duplicate title is signalled and the stored content is kept", func(t *testing.T) {
		s := newFakeStore(map[string]string{"entry_1": "original", "entry_2": "b"})

		resp, err := newWiki(s).NewEntry(context.Background(), submit(map[string][]string{
			"title":   {"entry_1"},
			"content": {"test_content"},
		}))
		require.NoError(t, err)
		assert.Empty(t, s.saves)
		assert.Equal(t, "original", s.entries["entry_1"])
		assert.Equal(t, KindRender, resp.Kind)
		assert.Equal(t, http.StatusConflict, resp.Status)
		assert.Equal(t, "entry_1 entry already exists!", resp.Data.Errors["title"])
		assert.Equal(t, "test_content", resp.Data.Form.Content)
	})

	t.Run("An invalid submission re-renders the form without saving", func(t *testing.T) {
		s := newFakeStore(map[string]string{})

		resp, err := newWiki(s).NewEntry(context.Background(), submit(map[string][]string{
			"title":   {"a title that is far too long"},
			"content": {""},
		}))
		require.NoError(t, err)
		assert.Empty(t, s.saves)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, PageNew, resp.Page)
		assert.Contains(t, resp.Data.Errors, "title")
		assert.Contains(t, resp.Data.Errors, "content")
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Create reports each outcome explicitly", func(t *testing.T) {
		s := newFakeStore(map[string]string{"Git": "vcs"})
		w := newWiki(s)

		res, err := w.Create(ctx, NewEntryForm{Title: "Go", Content: "gopher"})
		require.NoError(t, err)
		assert.Equal(t, CreateCreated, res.Outcome)

		res, err = w.Create(ctx, NewEntryForm{Title: "Git", Content: "other"})
		require.NoError(t, err)
		assert.Equal(t, CreateDuplicate, res.Outcome)
		assert.Equal(t, "vcs", s.entries["Git"])

		res, err = w.Create(ctx, NewEntryForm{Title: "", Content: "x"})
		require.NoError(t, err)
		assert.Equal(t, CreateInvalid, res.Outcome)
	})

	t.Run("The title length limit is configurable", func(t *testing.T) {
		w := newWiki(newFakeStore(map[string]string{}), WithFormRules(FormRules{TitleMaxLength: 3}))

		res, err := w.Create(ctx, NewEntryForm{Title: "Rust", Content: "crab"})
		require.NoError(t, err)
		assert.Equal(t, CreateInvalid, res.Outcome)
	})
}

func TestEditEntry(t *testing.T) {
	t.Run("Editing replaces the content and redirects to the entry", func(t *testing.T) {
		s := newFakeStore(map[string]string{"entry_1": "old"})

		resp, err := newWiki(s).EditEntry(context.Background(), "entry_1", submit(map[string][]string{
			"title":   {"entry_1"},
			"content": {"updated"},
		}))
		require.NoError(t, err)
		assert.Equal(t, "updated", s.entries["entry_1"])
		assert.Equal(t, KindRedirect, resp.Kind)
		assert.Equal(t, "entry_1", resp.Target)
	})

	t.Run("Editing a missing title creates it", func(t *testing.T) {
		s := newFakeStore(map[string]string{})

		resp, err := newWiki(s).EditEntry(context.Background(), "fresh", submit(map[string][]string{
			"content": {"new content"},
		}))
		require.NoError(t, err)
		assert.Equal(t, "new content", s.entries["fresh"])
		assert.Equal(t, KindRedirect, resp.Kind)
	})

	t.Run("Submitted content is stored without surrounding whitespace", func(t *testing.T) {
		s := newFakeStore(map[string]string{"entry_1": "old"})

		_, err := newWiki(s).EditEntry(context.Background(), "entry_1", submit(map[string][]string{
			"content": {"  text\n"},
		}))
		require.NoError(t, err)
		assert.Equal(t, []saveCall{{title: "entry_1", content: "text"}}, s.saves)
	})

	t.Run("A non-submission request returns a form filled with the stored content", func(t *testing.T) {
		s := newFakeStore(map[string]string{"entry_1": "stored"})

		resp, err := newWiki(s).EditEntry(context.Background(), "entry_1", Request{})
		require.NoError(t, err)
		assert.Equal(t, PageEdit, resp.Page)
		assert.Equal(t, "entry_1", resp.Data.Title)
		assert.Equal(t, "stored", resp.Data.Form.Content)
	})

	t.Run("Empty content is rejected", func(t *testing.T) {
		s := newFakeStore(map[string]string{"entry_1": "stored"})

		resp, err := newWiki(s).EditEntry(context.Background(), "entry_1", submit(map[string][]string{
			"content": {"   "},
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "stored", s.entries["entry_1"])
		assert.Empty(t, s.saves)
	})

	t.Run("Titles that cannot be stored are not found", func(t *testing.T) {
		resp, err := newWiki(newFakeStore(map[string]string{})).EditEntry(context.Background(), "..", Request{})
		require.NoError(t, err)
		assert.Equal(t, KindNotFound, resp.Kind)
	})
}

func TestRandom(t *testing.T) {
	t.Run("The random source picks the redirect target", func(t *testing.T) {
		s := newFakeStore(map[string]string{"a": "1", "b": "2", "c": "3"})

		resp, err := newWiki(s, WithRandom(fixedRandom(1))).Random(context.Background())
		require.NoError(t, err)
		assert.Equal(t, KindRedirect, resp.Kind)
		assert.Equal(t, "b", resp.Target)
	})

	t.Run("A seeded generator always lands on a stored title", func(t *testing.T) {
		s := newFakeStore(map[string]string{"a": "1", "b": "2", "c": "3"})
		w := newWiki(s, WithRandom(rand.New(rand.NewSource(42))))

		for i := 0; i < 20; i++ {
			title, err := w.PickRandom(context.Background())
			require.NoError(t, err)
			assert.Contains(t, s.entries, title)
		}
	})

	t.Run("An empty store yields a not found response", func(t *testing.T) {
		w := newWiki(newFakeStore(map[string]string{}))

		_, err := w.PickRandom(context.Background())
		assert.ErrorIs(t, err, ErrEmptyStore)

		resp, err := w.Random(context.Background())
		require.NoError(t, err)
		assert.Equal(t, KindNotFound, resp.Kind)
		assert.Equal(t, EmptyStoreMessage, resp.Message)
	})
}
