package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pepdine/pep-backend/api/middleware"
	"github.com/pepdine/pep-backend/internal/cart"
	"github.com/pepdine/pep-backend/pkg/enums"
)

type stubCartService struct {
	view *cart.View

	userID   uuid.UUID
	lineID   uuid.UUID
	quantity int
	added    cart.AddItemInput
	coupon   string
}

func (s *stubCartService) result() (*cart.View, error) {
	if s.view == nil {
		return &cart.View{Items: []cart.LineView{}}, nil
	}
	return s.view, nil
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	s.userID = userID
	return s.result()
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cart.AddItemInput) (*cart.View, error) {
	s.userID = userID
	s.added = input
	return s.result()
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*cart.View, error) {
	s.userID, s.lineID, s.quantity = userID, lineID, quantity
	return s.result()
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*cart.View, error) {
	s.userID, s.lineID = userID, lineID
	return s.result()
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	s.userID = userID
	return s.result()
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*cart.View, error) {
	s.userID = userID
	s.coupon = code
	return s.result()
}

func (s *stubCartService) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	s.userID = userID
	return s.result()
}

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), userID, enums.UserRoleCustomer))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCartAddItemMapsRequest(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	userID := uuid.New()
	itemID := uuid.New()
	body := `{"menu_item_id":"` + itemID.String() + `","quantity":2,"size":"XL","addons":[{"id":" cheese "},{"id":"olives","quantity":3}],"special_instructions":" no onion "}`

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), userID)
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.userID != userID || svc.added.MenuItemID != itemID {
		t.Fatalf("unexpected call: user %s input %+v", svc.userID, svc.added)
	}
	if svc.added.Quantity != 2 || svc.added.Size != "XL" {
		t.Fatalf("unexpected quantity/size: %+v", svc.added)
	}
	if len(svc.added.Addons) != 2 {
		t.Fatalf("expected 2 addons, got %d", len(svc.added.Addons))
	}
	if svc.added.Addons[0].ID != "cheese" || svc.added.Addons[0].Quantity != 1 {
		t.Fatalf("expected defaulted addon quantity, got %+v", svc.added.Addons[0])
	}
	if svc.added.Addons[1].Quantity != 3 {
		t.Fatalf("unexpected addon quantity: %+v", svc.added.Addons[1])
	}
	if svc.added.SpecialInstructions != "no onion" {
		t.Fatalf("expected trimmed instructions, got %q", svc.added.SpecialInstructions)
	}
}

func TestCartAddItemRejectsZeroQuantity(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	body := `{"menu_item_id":"` + uuid.NewString() + `","quantity":0}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.userID != uuid.Nil {
		t.Fatalf("service should not be called")
	}
}

func TestCartAddItemPassesNonPositiveAddonQuantities(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	body := `{"menu_item_id":"` + uuid.NewString() + `","quantity":1,"addons":[{"id":"cheese","quantity":0},{"id":"olives","quantity":-1}]}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.added.Addons) != 2 {
		t.Fatalf("expected both addons forwarded, got %+v", svc.added.Addons)
	}
	if svc.added.Addons[0].Quantity != 0 || svc.added.Addons[1].Quantity != -1 {
		t.Fatalf("explicit quantities must not be defaulted: %+v", svc.added.Addons)
	}
}

func TestCartAddItemKeepsMultibyteInstructions(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	note := strings.Repeat("a", 499) + "é"
	body := `{"menu_item_id":"` + uuid.NewString() + `","quantity":1,"special_instructions":"` + note + `"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.added.SpecialInstructions != note {
		t.Fatalf("instructions were altered: %d bytes", len(svc.added.SpecialInstructions))
	}

	tooLong := &stubCartService{}
	body = `{"menu_item_id":"` + uuid.NewString() + `","quantity":1,"special_instructions":"` + strings.Repeat("é", 501) + `"}`
	req = withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), uuid.New())
	resp = httptest.NewRecorder()
	CartAddItem(tooLong, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if tooLong.userID != uuid.Nil {
		t.Fatalf("service should not be called")
	}
}

func TestCartUpdateItemPassesQuantity(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	lineID := uuid.New()
	req := withUser(httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/"+lineID.String(), strings.NewReader(`{"quantity":0}`)), uuid.New())
	req = withURLParam(req, cartLineParam, lineID.String())
	resp := httptest.NewRecorder()
	CartUpdateItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lineID != lineID || svc.quantity != 0 {
		t.Fatalf("unexpected update: line %s qty %d", svc.lineID, svc.quantity)
	}
}

func TestCartRemoveItemRejectsBadID(t *testing.T) {
	t.Parallel()

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/nope", nil), uuid.New())
	req = withURLParam(req, cartLineParam, "nope")
	resp := httptest.NewRecorder()
	CartRemoveItem(&stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartApplyCouponRequiresCode(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", strings.NewReader(`{"coupon_code":""}`)), uuid.New())
	resp := httptest.NewRecorder()
	CartApplyCoupon(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	req = withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", strings.NewReader(`{"coupon_code":"SAVE10"}`)), uuid.New())
	resp = httptest.NewRecorder()
	CartApplyCoupon(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || svc.coupon != "SAVE10" {
		t.Fatalf("expected coupon applied, got %d %q", resp.Code, svc.coupon)
	}
}

func TestCartFetchRequiresPrincipal(t *testing.T) {
	t.Parallel()

	resp := httptest.NewRecorder()
	CartFetch(&stubCartService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
