package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/printorder/internal/adapters/asset"
	"github.com/phenrril/printorder/internal/domain"
	"github.com/phenrril/printorder/internal/usecase"
)

var errBadSelection = errors.New("invalid material or color")

var checkoutFields = []domain.Field{
	domain.FieldEmail,
	domain.FieldPhone,
	domain.FieldAddress,
	domain.FieldPaymentMethod,
	domain.FieldCity,
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	kv := s.sessionStore(w, r)
	q := r.URL.Query()
	if domain.ParseView(q.Get("view")) == domain.ViewCheckout {
		sess := (&usecase.CheckoutUC{Store: kv}).Mount(r.Context())
		s.renderCheckout(w, r, kv, sess, "", http.StatusOK)
		return
	}
	s.renderConfigurator(w, r, kv, domain.NewSelection(), q.Get("added") == "1", "", http.StatusOK)
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "form", http.StatusBadRequest)
		return
	}
	tr, err := domain.Navigate(domain.ParseView(r.PostFormValue("view")), r.PostFormValue("path"))
	if err != nil {
		http.Error(w, "path", http.StatusBadRequest)
		return
	}
	if tr.External() {
		http.Redirect(w, r, tr.Redirect, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, viewURL(tr.View), http.StatusSeeOther)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	kv := s.sessionStore(w, r)
	sel, err := s.parseSelection(w, r)
	if err != nil {
		s.selectionError(w, r, err)
		return
	}
	n, err := s.configurator(kv).AddToCart(r.Context(), sel)
	if err != nil {
		log.Error().Err(err).Msg("add to cart")
		if wantsJSON(r) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": alertGeneric})
			return
		}
		s.renderConfigurator(w, r, kv, sel, false, alertGeneric, http.StatusInternalServerError)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "items": n, "message": "Đã thêm vào giỏ hàng!"})
		return
	}
	http.Redirect(w, r, "/order?added=1", http.StatusSeeOther)
}

func (s *Server) handleProceed(w http.ResponseWriter, r *http.Request) {
	kv := s.sessionStore(w, r)
	sel, err := s.parseSelection(w, r)
	if err != nil {
		s.selectionError(w, r, err)
		return
	}
	if _, err := s.configurator(kv).ProceedToPayment(r.Context(), sel); err != nil {
		log.Error().Err(err).Msg("proceed to payment")
		s.renderConfigurator(w, r, kv, sel, false, alertGeneric, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, viewURL(domain.ViewCheckout), http.StatusSeeOther)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	kv := s.sessionStore(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "form", http.StatusBadRequest)
		return
	}
	uc := &usecase.CheckoutUC{Store: kv}
	sess := uc.Mount(r.Context())
	for _, f := range checkoutFields {
		sess.Form.Set(f, r.PostFormValue(string(f)))
	}

	path, err := uc.Submit(r.Context(), sess)
	switch {
	case err == nil:
		http.Redirect(w, r, path, http.StatusSeeOther)
	case errors.Is(err, domain.ErrValidation):
		s.renderCheckout(w, r, kv, sess, "", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrEmptyOrder):
		http.Redirect(w, r, viewURL(domain.ViewCheckout), http.StatusSeeOther)
	default:
		log.Error().Err(err).Msg("submit checkout")
		s.renderCheckout(w, r, kv, sess, alertGeneric, http.StatusInternalServerError)
	}
}

// parseSelection reads the configurator form. Multipart and urlencoded
// bodies are both accepted; only multipart can carry a file.
func (s *Server) parseSelection(w http.ResponseWriter, r *http.Request) (*domain.Selection, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	sel := domain.NewSelection()
	if m := strings.TrimSpace(r.FormValue("material")); m != "" {
		if !domain.Material(m).Valid() {
			return nil, errBadSelection
		}
		sel.Material = domain.Material(m)
	}
	if c := strings.TrimSpace(r.FormValue("color")); c != "" {
		if !domain.Color(c).Valid() {
			return nil, errBadSelection
		}
		sel.Color = domain.Color(c)
	}
	q, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	if err != nil {
		q = 1
	}
	sel.SetQuantity(q)
	sel.Notes = r.FormValue("notes")

	if r.MultipartForm != nil {
		if fh := asset.PickLast(r.MultipartForm.File["file"], r.MultipartForm.File["drop"]); fh != nil {
			sel.Attach(asset.FromFileHeader(fh))
		}
	}
	return sel, nil
}

func (s *Server) selectionError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusBadRequest
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		code = http.StatusRequestEntityTooLarge
	}
	log.Warn().Err(err).Msg("parse selection")
	if wantsJSON(r) {
		writeJSON(w, code, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) renderConfigurator(w http.ResponseWriter, r *http.Request, kv domain.KVStore, sel *domain.Selection, added bool, alert string, code int) {
	conf := s.configurator(kv)
	s.render(w, code, "configurator.html", map[string]any{
		"Title":       "Đặt in",
		"View":        domain.ViewConfigurator,
		"CartCount":   len(conf.Cart(r.Context())),
		"Selection":   sel,
		"Price":       sel.Price(),
		"MaxQuantity": domain.MaxQuantity,
		"Materials":   domain.Materials,
		"Colors":      domain.Colors,
		"Added":       added,
		"Alert":       alert,
	})
}

func (s *Server) renderCheckout(w http.ResponseWriter, r *http.Request, kv domain.KVStore, sess *usecase.CheckoutSession, alert string, code int) {
	errs := make(map[string]string, len(sess.Form.Errors))
	for f, msg := range sess.Form.Errors {
		errs[string(f)] = msg
	}
	totals, _ := sess.Totals()
	s.render(w, code, "checkout.html", map[string]any{
		"Title":          "Thanh toán",
		"View":           domain.ViewCheckout,
		"CartCount":      len(s.configurator(kv).Cart(r.Context())),
		"State":          sess.State,
		"Products":       sess.Record.Products,
		"Totals":         totals,
		"Buyer":          sess.Form.Buyer,
		"Errors":         errs,
		"PaymentMethods": domain.PaymentMethods,
		"Cities":         domain.Cities,
		"Alert":          alert,
	})
}
