package httpserver

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printorder/internal/adapters/store"
	"github.com/phenrril/printorder/internal/domain"
	"github.com/phenrril/printorder/internal/usecase"
)

const alertGeneric = "Đã xảy ra lỗi, vui lòng thử lại."

type Options struct {
	SessionKey   []byte
	MaxUpload    int64
	SecureCookie bool
}

type Server struct {
	tmpl    *template.Template
	kv      domain.KVStore
	encoder domain.ImageEncoder
	router  chi.Router

	sessionKey   []byte
	maxUpload    int64
	secureCookie bool
}

func New(t *template.Template, kv domain.KVStore, enc domain.ImageEncoder, opts Options) http.Handler {
	s := &Server{tmpl: t, kv: kv, encoder: enc, router: chi.NewRouter(),
		sessionKey: opts.SessionKey, maxUpload: opts.MaxUpload, secureCookie: opts.SecureCookie}
	if len(s.sessionKey) == 0 {
		s.sessionKey = []byte("dev-insecure")
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 25 << 20
	}

	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.routes()
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Get("/healthz", s.handleHealth)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, viewURL(domain.ViewConfigurator), http.StatusSeeOther)
	})

	r.Route("/order", func(r chi.Router) {
		r.Get("/", s.handleOrder)
		r.Post("/nav", s.handleNav)
		r.Post("/cart", s.handleAddToCart)
		r.Post("/proceed", s.handleProceed)
		r.Post("/submit", s.handleSubmit)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/price", s.apiPrice)
		r.Get("/cart", s.apiCart)
		r.Get("/checkout", s.apiCheckout)
		r.Post("/checkout/validate", s.apiValidate)
	})
}

// sessionStore returns the KV store scoped to the caller's browser session,
// issuing a session cookie first if needed.
func (s *Server) sessionStore(w http.ResponseWriter, r *http.Request) domain.KVStore {
	return store.Scoped(s.kv, s.ensureSession(w, r))
}

func (s *Server) configurator(kv domain.KVStore) *usecase.ConfiguratorUC {
	return &usecase.ConfiguratorUC{Store: kv, Encoder: s.encoder}
}

func viewURL(v domain.View) string {
	if v == domain.ViewCheckout {
		return "/order?view=checkout"
	}
	return "/order"
}

func (s *Server) render(w http.ResponseWriter, code int, name string, data map[string]any) {
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
		http.Error(w, "tpl", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
