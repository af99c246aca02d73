package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailcore/storefront/internal/admin"
	"github.com/retailcore/storefront/internal/cart"
	"github.com/retailcore/storefront/internal/catalog"
	"github.com/retailcore/storefront/internal/httpx"
	"github.com/retailcore/storefront/internal/order"
)

//
// ---------- STUBS & FAKES ----------
//

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// stubCatalog implements catalog.Repository in memory.
type stubCatalog struct {
	mu         sync.Mutex
	categories map[string]catalog.Category
	products   map[string]catalog.Product
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		categories: make(map[string]catalog.Category),
		products:   make(map[string]catalog.Product),
	}
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []catalog.Category
	for _, c := range s.categories {
		c.ProductCount = 0
		for _, p := range s.products {
			if p.CategoryID == c.ID && p.Active {
				c.ProductCount++
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubCatalog) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	for _, p := range s.products {
		if p.CategoryID == c.ID && p.Active {
			c.ProductCount++
		}
	}
	return &c, nil
}

func (s *stubCatalog) GetCategoryByName(ctx context.Context, name string) (*catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == name {
			cp := c
			return &cp, nil
		}
	}
	return nil, catalog.ErrCategoryNotFound
}

func (s *stubCatalog) CreateCategory(ctx context.Context, c *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return catalog.ErrCategoryExists
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *stubCatalog) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok {
		return catalog.ErrCategoryNotFound
	}
	if c.Name != "" {
		existing.Name = c.Name
	}
	if c.Description != "" {
		existing.Description = c.Description
	}
	s.categories[c.ID] = existing
	return nil
}

func (s *stubCatalog) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			return catalog.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *stubCatalog) ListProducts(ctx context.Context, q catalog.Query) ([]catalog.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(q.Q))
	var all []catalog.Product
	for _, p := range s.products {
		if !p.Active && !q.IncludeInactive {
			continue
		}
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		all = append(all, p)
	}

	sort.SliceStable(all, func(i, j int) bool {
		switch q.Sort {
		case "name":
			return all[i].Name < all[j].Name
		case "-name":
			return all[i].Name > all[j].Name
		case "price":
			return all[i].Price.LessThan(all[j].Price)
		case "-price":
			return all[i].Price.GreaterThan(all[j].Price)
		case "created_at":
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		default:
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
	})

	total := int64(len(all))
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]catalog.Product(nil), all[offset:end]...), total, nil
}

func (s *stubCatalog) FeaturedProducts(ctx context.Context, limit int) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []catalog.Product
	for _, p := range s.products {
		if p.Active && p.Stock > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := p
	return &cp, nil
}

func (s *stubCatalog) GetProductByName(ctx context.Context, name string) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (s *stubCatalog) CreateProduct(ctx context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = *p
	return nil
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, p *catalog.Product, updatePrice bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return catalog.ErrProductNotFound
	}
	if p.Name != "" {
		existing.Name = p.Name
	}
	if p.Description != "" {
		existing.Description = p.Description
	}
	if p.CategoryID != "" {
		existing.CategoryID = p.CategoryID
	}
	if updatePrice {
		existing.Price = p.Price
	}
	existing.Stock = p.Stock
	s.products[p.ID] = existing
	return nil
}

func (s *stubCatalog) SetProductActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	p.Active = active
	s.products[id] = p
	return nil
}

func (s *stubCatalog) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

// decrementAll applies the checkout decrements atomically, CAS style.
func (s *stubCatalog) decrementAll(items []order.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		p, ok := s.products[it.ProductID]
		avail := 0
		if ok && p.Active {
			avail = p.Stock
		}
		if it.Quantity > avail {
			return &catalog.InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: avail}
		}
	}
	for _, it := range items {
		p := s.products[it.ProductID]
		p.Stock -= it.Quantity
		s.products[it.ProductID] = p
	}
	return nil
}

func (s *stubCatalog) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *stubCatalog) setStock(id string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Stock = n
	s.products[id] = p
}

// stubOrders implements order.Repository; stock lives in the shared catalog.
type stubOrders struct {
	mu     sync.Mutex
	cat    *stubCatalog
	orders map[string]*order.Order
	items  map[string][]order.Item
}

func newStubOrders(cat *stubCatalog) *stubOrders {
	return &stubOrders{
		cat:    cat,
		orders: make(map[string]*order.Order),
		items:  make(map[string][]order.Item),
	}
}

func (s *stubOrders) Create(ctx context.Context, o *order.Order, items []order.Item) error {
	if err := s.cat.decrementAll(items); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	s.items[o.ID] = append([]order.Item(nil), items...)
	return nil
}

func (s *stubOrders) GetByID(ctx context.Context, id string) (*order.Order, []order.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil, order.ErrNotFound
	}
	cp := *o
	return &cp, append([]order.Item(nil), s.items[id]...), nil
}

func (s *stubOrders) List(ctx context.Context, q order.Query) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (s *stubOrders) GetItems(ctx context.Context, orderID string) ([]order.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.Item(nil), s.items[orderID]...), nil
}

func (s *stubOrders) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// stubAccounts implements admin.Repository with a fast-cost bootstrap login.
type stubAccounts struct {
	mu       sync.Mutex
	accounts map[string]*admin.Account
}

func testAccounts() *stubAccounts {
	hash, _ := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.MinCost)
	return &stubAccounts{accounts: map[string]*admin.Account{
		"admin": {ID: uuid.NewString(), Username: "admin", PasswordHash: string(hash)},
	}}
}

func (s *stubAccounts) Create(ctx context.Context, a *admin.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Username]; ok {
		return admin.ErrAlreadyExist
	}
	cp := *a
	s.accounts[a.Username] = &cp
	return nil
}

func (s *stubAccounts) GetByUsername(ctx context.Context, username string) (*admin.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return nil, admin.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubAccounts) UpdatePassword(ctx context.Context, id, hash string) error { return nil }

func (s *stubAccounts) Delete(ctx context.Context, id string) (bool, error) { return false, nil }

// newTestRouter wires the same routes as main over the stubs.
func newTestRouter(cat *stubCatalog, ord *stubOrders, acc admin.Repository) (*gin.Engine, *cart.Service) {
	carts := cart.NewService(cart.NewMemStore(), cat)
	reconciler := order.NewReconciler(carts, ord)

	r := gin.New()
	r.GET("/featured", featuredHandler(cat))
	r.GET("/products", listProductsHandler(cat))
	r.GET("/products/:id", getProductHandler(cat))
	r.GET("/categories", listCategoriesHandler(cat))
	r.GET("/categories/:id", getCategoryHandler(cat))
	r.GET("/orders/:id", getOrderHandler(ord))

	sess := r.Group("/", httpx.Session())
	sess.GET("/cart", getCartHandler(carts))
	sess.GET("/cart/count", cartCountHandler(carts))
	sess.POST("/cart/items", addCartItemHandler(carts))
	sess.PUT("/cart/items/:product_id", updateCartItemHandler(carts))
	sess.DELETE("/cart/items/:product_id", removeCartItemHandler(carts))
	sess.DELETE("/cart", clearCartHandler(carts))
	sess.POST("/checkout", checkoutHandler(reconciler))

	adm := r.Group("/admin", admin.BasicAuth(acc))
	adm.GET("/orders", listOrdersHandler(ord))
	adm.GET("/orders/:id", getOrderHandler(ord))
	adm.PUT("/orders/:id/status", updateOrderStatusHandler(ord))
	adm.GET("/products", adminListProductsHandler(cat))
	adm.POST("/products", createProductHandler(cat))
	adm.PUT("/products/:id", updateProductHandler(cat))
	adm.PUT("/products/:id/active", setProductActiveHandler(cat))
	adm.DELETE("/products/:id", deleteProductHandler(cat))
	adm.POST("/categories", createCategoryHandler(cat))
	adm.PUT("/categories/:id", updateCategoryHandler(cat))
	adm.DELETE("/categories/:id", deleteCategoryHandler(cat))

	return r, carts
}

func request(r *gin.Engine, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == httpx.SessionCookie {
			return ck
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// seedCatalog: dos categorías y cuatro productos, uno inactivo y uno agotado.
func seedCatalog() *stubCatalog {
	cat := newStubCatalog()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	electronics := catalog.Category{ID: "cat-elec", Name: "Electronics", Description: "Gadgets"}
	books := catalog.Category{ID: "cat-books", Name: "Books", Description: "Paper"}
	cat.categories[electronics.ID] = electronics
	cat.categories[books.ID] = books

	cat.products["p-phone"] = catalog.Product{
		ID: "p-phone", CategoryID: "cat-elec", Name: "Smartphone Pro Max",
		Description: "Latest flagship", Price: price("999.99"), Stock: 50, Active: true,
		CreatedAt: base.Add(3 * time.Hour),
	}
	cat.products["p-headphones"] = catalog.Product{
		ID: "p-headphones", CategoryID: "cat-elec", Name: "Wireless Headphones",
		Description: "Noise cancelling", Price: price("199.99"), Stock: 100, Active: true,
		CreatedAt: base.Add(2 * time.Hour),
	}
	cat.products["p-book"] = catalog.Product{
		ID: "p-book", CategoryID: "cat-books", Name: "Programming Guide",
		Description: "Learn by doing", Price: price("49.99"), Stock: 0, Active: true,
		CreatedAt: base.Add(time.Hour),
	}
	cat.products["p-retired"] = catalog.Product{
		ID: "p-retired", CategoryID: "cat-books", Name: "Old Almanac",
		Description: "Out of print", Price: price("9.99"), Stock: 5, Active: false,
		CreatedAt: base,
	}
	return cat
}

//
// ---------- TESTS ----------
//

func TestListProducts_PublicHidesInactive(t *testing.T) {
	t.Parallel()

	cat := seedCatalog()
	r, _ := newTestRouter(cat, newStubOrders(cat), testAccounts())

	w := request(r, http.MethodGet, "/products", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp catalog.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Total != 3 || len(resp.Items) != 3 {
		t.Fatalf("total=%d len=%d, esperaba 3 activos", resp.Total, len(resp.Items))
	}
	for _, p := range resp.Items {
		if p.ID == "p-retired" {
			t.Fatal("inactive product leaked into the public listing")
		}
	}
	// newest first por defecto
	if resp.Items[0].ID != "p-phone" {
		t.Fatalf("first=%s, esperaba p-phone", resp.Items[0].ID)
	}
}

func TestListProducts_SearchAndCategory(t *testing.T) {
	t.Parallel()

	cat := seedCatalog()
	r, _ := newTestRouter(cat, newStubOrders(cat), testAccounts())

	w := request(r, http.MethodGet, "/products?q=headphones", "")
	var resp catalog.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != "p-headphones" {
		t.Fatalf("search falló: %+v", resp.Items)
	}

	w = request(r, http.MethodGet, "/products?category_id=cat-books", "")
	resp = catalog.ListResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != "p-book" {
		t.Fatalf("filtro de categoría falló: %+v", resp.Items)
	}
}

func TestListProducts_SortAndPagination(t *testing.T) {
	t.Parallel()

	cat := seedCatalog()
	r, _ := newTestRouter(cat, newStubOrders(cat), testAccounts())

	w := request(r, http.MethodGet, "/products?sort=price&limit=2", "")
	var resp catalog.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Total != 3 || len(resp.Items) != 2 {
		t.Fatalf("total=%d len=%d, esperaba 3/2", resp.Total, len(resp.Items))
	}
	if resp.Items[0].ID != "p-book" {
		t.Fatalf("cheapest first falló: %s", resp.Items[0].ID)
	}

	w = request(r, http.MethodGet, "/products?sort=price&limit=2&offset=2", "")
	resp = catalog.ListResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "p-phone" {
		t.Fatalf("página 2 falló: %+v", resp.Items)
	}
}

func TestGetProduct_OKAndInactiveHidden(t *testing.T) {
	t.Parallel()

	cat := seedCatalog()
	r, _ := newTestRouter(cat, newStubOrders(cat), testAccounts())

	w := request(r, http.MethodGet, "/products/p-phone", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d (esperaba 200)", w.Code)
	}

	w = request(r, http.MethodGet, "/products/p-retired", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (esperaba 404 para inactivo)", w.Code)
	}

	w = request(r, http.MethodGet, "/products/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (esperaba 404)", w.Code)
	}
}

func TestFeatured_OnlyActiveInStock(t *testing.T) {
	t.Parallel()

	cat := seedCatalog()
	r, _ := newTestRouter(cat, newStubOrders(cat), testAccounts())

	w := request(r, http.MethodGet, "/featured", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp catalog.FeaturedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Categories) != 2 {
		t.Fatalf("categories=%d, esperaba 2", len(resp.Categories))
	}
	if len(resp.Products) != 2 {
		t.Fatalf("products=%d, esperaba 2 (activos con stock)", len(resp.Products))
	}
}

func TestListCategories_CountsActiveProducts(t *testing.T) {
	t.Parallel()

	cat := seedCatalog()
	r, _ := newTestRouter(cat, newStubOrders(cat), testAccounts())

	w := request(r, http.MethodGet, "/categories", "")
	var cats []catalog.Category
	if err := json.Unmarshal(w.Body.Bytes(), &cats); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("len=%d, esperaba 2", len(cats))
	}
	// orden alfabético: Books, Electronics
	if cats[0].Name != "Books" || cats[0].ProductCount != 1 {
		t.Fatalf("Books count=%d, esperaba 1 (el inactivo no cuenta)", cats[0].ProductCount)
	}
	if cats[1].Name != "Electronics" || cats[1].ProductCount != 2 {
		t.Fatalf("Electronics count=%d, esperaba 2", cats[1].ProductCount)
	}
}

func TestGetCategory_NotFound(t *testing.T) {
	t.Parallel()

	cat := seedCatalog()
	r, _ := newTestRouter(cat, newStubOrders(cat), testAccounts())

	w := request(r, http.MethodGet, "/categories/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (esperaba 404)", w.Code)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
