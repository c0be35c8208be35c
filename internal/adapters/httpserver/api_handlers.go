package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/phenrril/printorder/internal/domain"
	"github.com/phenrril/printorder/internal/usecase"
	"github.com/phenrril/printorder/internal/views"
)

func (s *Server) apiPrice(w http.ResponseWriter, r *http.Request) {
	q, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("quantity")))
	if err != nil {
		q = 1
	}
	q = domain.NormalizeQuantity(q)
	price := domain.LinePrice(q)
	writeJSON(w, http.StatusOK, map[string]any{
		"quantity":   q,
		"unit_price": domain.UnitRate,
		"price":      price,
		"formatted":  views.VND(price),
	})
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	items := s.configurator(s.sessionStore(w, r)).Cart(r.Context())
	if items == nil {
		items = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) apiCheckout(w http.ResponseWriter, r *http.Request) {
	sess := (&usecase.CheckoutUC{Store: s.sessionStore(w, r)}).Mount(r.Context())
	resp := map[string]any{"state": sess.State, "products": []domain.Product{}}
	if totals, ok := sess.Totals(); ok {
		resp["products"] = sess.Record.Products
		resp["totals"] = totals
	}
	writeJSON(w, http.StatusOK, resp)
}

// apiValidate checks buyer info without submitting anything.
func (s *Server) apiValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		Address       string `json:"address"`
		PaymentMethod string `json:"payment_method"`
		City          string `json:"city"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<14)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	form := domain.CheckoutForm{Buyer: domain.BuyerInfo{
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		City:          domain.City(req.City),
	}}
	valid := form.Validate()
	errs := map[string]string{}
	for f, msg := range form.Errors {
		errs[string(f)] = msg
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   valid,
		"errors":  errs,
		"outcome": domain.OutcomePath(form.Buyer.PaymentMethod),
	})
}
