package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/printorder/internal/adapters/asset"
	"github.com/phenrril/printorder/internal/adapters/store/memory"
	"github.com/phenrril/printorder/internal/domain"
	"github.com/phenrril/printorder/internal/views"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

type client struct {
	h       http.Handler
	cookies []*http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postMultipart(target string, fields map[string]string, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileField != "" {
		fw, _ := mw.CreateFormFile(fileField, fileName)
		_, _ = fw.Write(content)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func newTestServer(t *testing.T, kv domain.KVStore) http.Handler {
	t.Helper()
	tmpl, err := views.Load(false)
	require.NoError(t, err)
	return New(tmpl, kv, asset.NewDataURLEncoder(0), Options{SessionKey: []byte("test-key"), MaxUpload: 1 << 20})
}

func newClient(t *testing.T) *client {
	return &client{h: newTestServer(t, memory.New())}
}

func buyerForm(method domain.PaymentMethod) url.Values {
	return url.Values{
		"email":          {"a@b.co"},
		"phone":          {"0901"},
		"address":        {"1 Lê Lợi"},
		"payment_method": {string(method)},
		"city":           {string(domain.CityHCM)},
	}
}

func TestHealthz(t *testing.T) {
	c := newClient(t)
	rec := c.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOrderPage_DefaultsToConfigurator(t *testing.T) {
	c := newClient(t)
	rec := c.get("/order")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Đặt in theo mẫu của bạn")
	assert.Contains(t, body, "100.000 đ")
	require.Len(t, c.cookies, 1)
	assert.Equal(t, sessionCookie, c.cookies[0].Name)
}

func TestFlow_ProceedCheckoutSubmitCOD(t *testing.T) {
	c := newClient(t)

	rec := c.postMultipart("/order/proceed", map[string]string{"material": "PLA", "color": "Đỏ", "quantity": "2"}, "", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/order?view=checkout", rec.Header().Get("Location"))

	rec = c.get("/order?view=checkout")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Đặt in theo mẫu")
	assert.Contains(t, body, "PLA")
	assert.Contains(t, body, "200.000 đ")
	assert.Contains(t, body, "265.000 đ")

	rec = c.postForm("/order/submit", buyerForm(domain.PaymentCashOnDelivery))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/result", rec.Header().Get("Location"))

	rec = c.get("/api/checkout")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty", resp["state"])
}

func TestSubmit_BankTransferGoesToShipment(t *testing.T) {
	c := newClient(t)
	c.postMultipart("/order/proceed", map[string]string{"quantity": "1"}, "", "", nil)

	rec := c.postForm("/order/submit", buyerForm(domain.PaymentBankTransfer))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/shipment", rec.Header().Get("Location"))
}

func TestSubmit_InvalidFormRerenders(t *testing.T) {
	c := newClient(t)
	c.postMultipart("/order/proceed", map[string]string{"quantity": "1"}, "", "", nil)

	form := buyerForm(domain.PaymentBankTransfer)
	form.Set("email", "bad-email")
	form.Set("address", "   ")
	rec := c.postForm("/order/submit", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Email không hợp lệ")
	assert.Contains(t, body, "Địa chỉ là bắt buộc")
	assert.NotContains(t, body, "Số điện thoại là bắt buộc")

	// record untouched
	rec = c.get("/api/checkout")
	assert.Contains(t, rec.Body.String(), `"state":"ready"`)
}

func TestSubmit_EmptyOrderRedirectsBack(t *testing.T) {
	c := newClient(t)
	rec := c.postForm("/order/submit", buyerForm(domain.PaymentBankTransfer))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/order?view=checkout", rec.Header().Get("Location"))

	rec = c.get("/order?view=checkout")
	assert.Contains(t, rec.Body.String(), "Không có sản phẩm nào để thanh toán.")
}

func TestProceed_WithImageEmbedsDataURL(t *testing.T) {
	c := newClient(t)
	rec := c.postMultipart("/order/proceed", map[string]string{"quantity": "1"}, "file", "model.png", pngBytes)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/order?view=checkout")
	body := rec.Body.String()
	assert.Contains(t, body, "model.png")
	assert.Contains(t, body, "data:image/png;base64,")
}

func TestProceed_ModelFileUsesPlaceholder(t *testing.T) {
	c := newClient(t)
	c.postMultipart("/order/proceed", nil, "drop", "part.stl", []byte("solid part"))

	rec := c.get("/api/checkout")
	var resp struct {
		Products []domain.Product `json:"products"`
		Totals   domain.Totals    `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "part.stl", resp.Products[0].Name)
	assert.Equal(t, domain.PlaceholderModelFile, resp.Products[0].Image)
	assert.Equal(t, int64(165000), resp.Totals.Total)
}

func TestProceed_InvalidMaterial(t *testing.T) {
	c := newClient(t)
	rec := c.postMultipart("/order/proceed", map[string]string{"material": "Gold"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type downStore struct{}

func (downStore) Get(context.Context, string) (string, error) { return "", domain.ErrNotFound }
func (downStore) Set(context.Context, string, string) error    { return errors.New("down") }
func (downStore) Remove(context.Context, string) error         { return errors.New("down") }

func TestProceed_StoreFailureShowsAlert(t *testing.T) {
	c := &client{h: newTestServer(t, downStore{})}
	rec := c.postMultipart("/order/proceed", map[string]string{"quantity": "3"}, "", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, alertGeneric)
	assert.Contains(t, body, "300.000 đ")
}

func TestProceed_StoreFailureKeepsImagePreview(t *testing.T) {
	c := &client{h: newTestServer(t, downStore{})}
	rec := c.postMultipart("/order/proceed", nil, "file", "model.png", pngBytes)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "model.png")
	assert.Regexp(t, `<img id="preview"[^>]*src="data:image/png;base64,`, body)
}

func TestProceed_HugeQuantityIsCapped(t *testing.T) {
	c := newClient(t)
	rec := c.postMultipart("/order/proceed", map[string]string{"quantity": "100000000000000"}, "", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/api/checkout")
	var resp struct {
		Products []domain.Product `json:"products"`
		Totals   domain.Totals    `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, domain.MaxQuantity, resp.Products[0].Quantity)
	assert.Equal(t, domain.UnitRate*domain.MaxQuantity, resp.Products[0].Price)
	assert.Equal(t, domain.UnitRate*domain.MaxQuantity+domain.DefaultShippingFee+domain.DefaultTax, resp.Totals.Total)
}

type removeFailStore struct{ *memory.Store }

func (removeFailStore) Remove(context.Context, string) error { return errors.New("down") }

func TestSubmit_ClearFailureStaysOnCheckout(t *testing.T) {
	c := &client{h: newTestServer(t, removeFailStore{memory.New()})}
	c.postMultipart("/order/proceed", nil, "", "", nil)

	rec := c.postForm("/order/submit", buyerForm(domain.PaymentCashOnDelivery))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), alertGeneric)
}

func TestAddToCart_JSONAndRedirect(t *testing.T) {
	c := newClient(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("quantity", "2")
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/order/cart", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	rec := c.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":1`)

	rec = c.postMultipart("/order/cart", map[string]string{"quantity": "1"}, "", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/order?added=1", rec.Header().Get("Location"))

	rec = c.get("/order?added=1")
	assert.Contains(t, rec.Body.String(), "Đã thêm vào giỏ hàng!")

	rec = c.get("/api/cart")
	var cart struct {
		Items []domain.Product `json:"items"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, int64(200000), cart.Items[0].Price)

	// cart does not feed checkout
	rec = c.get("/api/checkout")
	assert.Contains(t, rec.Body.String(), `"state":"empty"`)
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newTestServer(t, memory.New())
	a := &client{h: h}
	b := &client{h: h}

	a.postMultipart("/order/proceed", nil, "", "", nil)

	rec := b.get("/api/checkout")
	assert.Contains(t, rec.Body.String(), `"state":"empty"`)
	rec = a.get("/api/checkout")
	assert.Contains(t, rec.Body.String(), `"state":"ready"`)
}

func TestTamperedSessionGetsFreshOne(t *testing.T) {
	c := newClient(t)
	c.postMultipart("/order/proceed", nil, "", "", nil)
	require.Len(t, c.cookies, 1)

	c.cookies[0].Value = "AAAA." + c.cookies[0].Value[strings.Index(c.cookies[0].Value, ".")+1:]
	rec := c.get("/api/checkout")
	assert.Contains(t, rec.Body.String(), `"state":"empty"`)
}

func TestNav(t *testing.T) {
	c := newClient(t)
	cases := []struct {
		path     string
		code     int
		location string
	}{
		{"/dat-in", http.StatusSeeOther, "/order"},
		{"/order-page", http.StatusSeeOther, "/order?view=checkout"},
		{"/kham-pha", http.StatusSeeOther, "/kham-pha"},
		{"/", http.StatusSeeOther, "/"},
		{"//evil.example", http.StatusBadRequest, ""},
		{"https://evil.example", http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := c.postForm("/order/nav", url.Values{"path": {tc.path}, "view": {"checkout"}})
			assert.Equal(t, tc.code, rec.Code)
			if tc.location != "" {
				assert.Equal(t, tc.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAPIPrice(t *testing.T) {
	c := newClient(t)
	cases := []struct {
		query     string
		quantity  float64
		price     float64
		formatted string
	}{
		{"quantity=2", 2, 200000, "200.000 đ"},
		{"quantity=0", 1, 100000, "100.000 đ"},
		{"quantity=-4", 1, 100000, "100.000 đ"},
		{"quantity=abc", 1, 100000, "100.000 đ"},
		{"", 1, 100000, "100.000 đ"},
		{"quantity=10000", 10000, 1000000000, "1.000.000.000 đ"},
		{"quantity=100000000000000", 10000, 1000000000, "1.000.000.000 đ"},
		{"quantity=99999999999999999999", 1, 100000, "100.000 đ"},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec := c.get("/api/price?" + tc.query)
			require.Equal(t, http.StatusOK, rec.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.quantity, resp["quantity"])
			assert.Equal(t, tc.price, resp["price"])
			assert.Equal(t, tc.formatted, resp["formatted"])
		})
	}
}

func TestAPIValidate(t *testing.T) {
	c := newClient(t)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/validate",
		strings.NewReader(`{"email":"","phone":"1","address":"x","payment_method":"Thanh toán khi nhận hàng"}`))
	rec := c.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid   bool              `json:"valid"`
		Errors  map[string]string `json:"errors"`
		Outcome string            `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, map[string]string{"email": "Email là bắt buộc"}, resp.Errors)
	assert.Equal(t, "/result", resp.Outcome)

	rec = c.do(httptest.NewRequest(http.MethodPost, "/api/checkout/validate", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
