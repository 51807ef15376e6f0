package wiki

import "net/http"

type ResponseKind int

const (
	// KindRender asks the caller to render Page with Data.
	KindRender ResponseKind = iota
	// KindRedirect asks the caller to redirect to the entry named Target.
	KindRedirect
	// KindNotFound asks the caller to answer 404 with Message.
	KindNotFound
)

func (k ResponseKind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindRedirect:
		return "redirect"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

type Page string

const (
	PageIndex  Page = "index"
	PageEntry  Page = "entry"
	PageSearch Page = "search"
	PageNew    Page = "new"
	PageEdit   Page = "edit"
)

// FormData holds the values shown in an input form.
type FormData struct {
	Title   string
	Content string
}

type PageData struct {
	Title   string
	Query   string
	Entries []string
	// HTML is the rendered entry body. It is produced by the markdown
	// renderer and must not be escaped again.
	HTML   string
	Form   FormData
	Errors FieldErrors
}

// Response describes what a handler wants the web layer to do.
type Response struct {
	Kind    ResponseKind
	Status  int
	Page    Page
	Data    PageData
	Target  string
	Message string
}

// Request carries the parts of an HTTP request that form handlers need.
type Request struct {
	// Submitted is true for form submissions (POST).
	Submitted bool
	Form      map[string][]string
}

func render(status int, page Page, data PageData) Response {
	return Response{
		Kind:   KindRender,
		Status: status,
		Page:   page,
		Data:   data,
	}
}

func redirect(title string) Response {
	return Response{
		Kind:   KindRedirect,
		Status: http.StatusFound,
		Target: title,
	}
}

func notFound(message string) Response {
	return Response{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: message,
	}
}
