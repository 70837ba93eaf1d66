// Package httphandler exposes the catalog over HTTP/JSON.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
)

// GET    v1/products?category=&pack_size=&type=&q=&lang=  (200, 400)
// GET    v1/products/{slug}?lang=                         (200, 404)
// GET    v1/filters?lang=                                 (200)
// POST   v1/views                                         (201)
// GET    v1/views/{id}?lang=                              (200, 404)
// POST   v1/views/{id}/toggle {"dimension", "value"}      (204, 400, 404)
// PUT    v1/views/{id}/search {"text"}                    (204, 404)
// DELETE v1/views/{id}/filters                            (204, 404)
// DELETE v1/views/{id}                                    (204, 404)
// GET    v1/translations/{key}?lang=                      (200)
// GET    v1/language                                      (200)
// PUT    v1/language {"language"}                         (200, 400)

type CatalogHandler struct {
	browser    port.CatalogBrowser
	views      port.ViewManager
	language   port.LanguageSwitcher
	translator port.Translator
}

func RegisterCatalog(
	mux *http.ServeMux,
	browser port.CatalogBrowser,
	views port.ViewManager,
	language port.LanguageSwitcher,
	translator port.Translator,
) {
	h := CatalogHandler{browser, views, language, translator}

	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{slug}", h.GetProduct)
	mux.HandleFunc("GET /v1/filters", h.GetFilters)

	mux.HandleFunc("POST /v1/views", h.PostView)
	mux.HandleFunc("GET /v1/views/{id}", h.GetView)
	mux.HandleFunc("POST /v1/views/{id}/toggle", h.PostToggle)
	mux.HandleFunc("PUT /v1/views/{id}/search", h.PutSearch)
	mux.HandleFunc("DELETE /v1/views/{id}/filters", h.DeleteFilters)
	mux.HandleFunc("DELETE /v1/views/{id}", h.DeleteView)

	mux.HandleFunc("GET /v1/translations/{key}", h.GetTranslation)
	mux.HandleFunc("GET /v1/language", h.GetLanguage)
	mux.HandleFunc("PUT /v1/language", h.PutLanguage)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"

	lang, ok := h.requestLanguage(w, r)
	if !ok {
		return
	}

	state, err := stateFromQuery(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	page, err := h.browser.Browse(r.Context(), state, lang)
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, fromPage(page), op)
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProduct"

	lang, ok := h.requestLanguage(w, r)
	if !ok {
		return
	}

	detail, err := h.browser.ProductDetail(r.Context(), r.PathValue("slug"), lang)
	if err != nil {
		if isNotFound(err) {
			notFound(w, r,
				h.translator.Translate("products.notFound.title", lang),
				h.translator.Translate("products.notFound.subtitle", lang),
			)
			return
		}
		writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, fromDetail(detail), op)
}

func (h CatalogHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetFilters"

	lang, ok := h.requestLanguage(w, r)
	if !ok {
		return
	}

	opts, err := h.browser.FilterOptions(r.Context(), lang)
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, fromOptions(opts), op)
}

func (h CatalogHandler) PostView(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.PostView"

	id, err := h.views.OpenView(r.Context())
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	w.Header().Set("Location", "/v1/views/"+id)
	writeJSON(w, http.StatusCreated, ViewCreated{ViewID: id}, op)
}

func (h CatalogHandler) GetView(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetView"

	lang, ok := h.requestLanguage(w, r)
	if !ok {
		return
	}

	page, err := h.views.ViewPage(r.Context(), r.PathValue("id"), lang)
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, fromPage(page), op)
}

func (h CatalogHandler) PostToggle(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.PostToggle"

	var req ToggleRequest
	if !decodeJSON(w, r, &req, op) {
		return
	}

	dim, err := domain.ParseDimension(req.Dimension)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		badRequest(w, r, "value is required")
		return
	}

	err = h.views.ToggleFilter(r.Context(), r.PathValue("id"), dim, req.Value)
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogHandler) PutSearch(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.PutSearch"

	lang, ok := h.requestLanguage(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if !decodeJSON(w, r, &req, op) {
		return
	}

	err := h.views.SetSearchText(r.Context(), r.PathValue("id"), req.Text, lang)
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogHandler) DeleteFilters(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.DeleteFilters"

	if err := h.views.ClearFilters(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogHandler) DeleteView(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.DeleteView"

	if err := h.views.CloseView(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogHandler) GetTranslation(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetTranslation"

	lang, ok := h.requestLanguage(w, r)
	if !ok {
		return
	}

	key := r.PathValue("key")
	writeJSON(w, http.StatusOK, Translation{
		Key:      key,
		Language: string(lang),
		Text:     h.translator.Translate(key, lang),
	}, op)
}

func (h CatalogHandler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetLanguage"
	writeJSON(w, http.StatusOK, LanguageBody{string(h.language.Current())}, op)
}

func (h CatalogHandler) PutLanguage(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.PutLanguage"

	var req LanguageBody
	if !decodeJSON(w, r, &req, op) {
		return
	}

	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.language.Set(r.Context(), lang); err != nil {
		writeError(w, r, op, err)
		return
	}
	slog.Info("language switched", "op", op, "language", lang)
	writeJSON(w, http.StatusOK, LanguageBody{string(lang)}, op)
}

// requestLanguage reads the lang query parameter and falls back to the
// current language. It writes a 400 response for unknown codes.
func (h CatalogHandler) requestLanguage(
	w http.ResponseWriter, r *http.Request,
) (domain.Language, bool) {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		return h.language.Current(), true
	}
	lang, err := domain.ParseLanguage(raw)
	if err != nil {
		badRequest(w, r, err.Error())
		return "", false
	}
	return lang, true
}

// stateFromQuery builds a filter state from repeated or comma separated
// query values.
func stateFromQuery(r *http.Request) (*domain.FilterState, error) {
	q := r.URL.Query()
	for param := range q {
		switch param {
		case "category", "pack_size", "type", "q", "lang":
		default:
			return nil, &queryError{param}
		}
	}

	state := domain.NewFilterState()

	params := map[string]domain.Dimension{
		"category":  domain.DimensionCategory,
		"pack_size": domain.DimensionPackSize,
		"type":      domain.DimensionType,
	}
	for param, dim := range params {
		for _, raw := range q[param] {
			for _, v := range strings.Split(raw, ",") {
				v = strings.TrimSpace(v)
				if v == "" || state.Has(dim, v) {
					continue
				}
				state.Toggle(dim, v)
			}
		}
	}
	state.SetSearchText(q.Get("q"))
	return state, nil
}

type queryError struct {
	param string
}

func (e *queryError) Error() string {
	return "unknown query parameter " + e.param
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Warn("failed to parse JSON", "op", op, "err", err)
		badRequest(w, r, "invalid JSON data")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any, op string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
