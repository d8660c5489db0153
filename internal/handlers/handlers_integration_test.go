package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"kasir/internal/handlers"
	"kasir/internal/middleware"
	"kasir/internal/models"
	"kasir/internal/pricing"
	"kasir/internal/repositories"
	"kasir/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp wires a Fiber app the way main does, against a dedicated
// in-memory SQLite database and without a message broker.
func setupApp(t *testing.T, dbName string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.User{}, &models.Order{}, &models.OrderItem{}, &models.CartItem{},
	))

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)

	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, cartRepo, pricing.DefaultConfig(), nil)
	authService := services.NewAuthService(userRepo, "test_jwt_secret")

	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterGuestRoutes(apiV1)

	authenticated := apiV1.Group("", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(authenticated)
	orderHandler.RegisterRoutes(authenticated)

	staff := authenticated.Group("", middleware.StaffRequired())
	productHandler.RegisterAdminRoutes(staff)
	orderHandler.RegisterAdminRoutes(staff)

	return app, db
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// registerAndLogin creates a user and returns a bearer token for them.
func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	return login(t, app, username)
}

func login(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// registerStaff creates a user, promotes them to staff directly in the
// database, and logs in again so the token carries the staff role claim.
func registerStaff(t *testing.T, app *fiber.App, db *gorm.DB, username string) string {
	t.Helper()

	registerAndLogin(t, app, username)
	err := db.Model(&models.User{}).Where("username = ?", username).
		Update("role", models.RoleStaff).Error
	assert.NoError(t, err)
	return login(t, app, username)
}

func createProduct(t *testing.T, app *fiber.App, staffToken string, price float64, stock int) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/admin/products", staffToken, map[string]interface{}{
		"name":        "Test Laptop",
		"description": "For testing purposes",
		"price":       price,
		"stock":       stock,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	assert.NotEmpty(t, id)
	return id
}

func productStock(t *testing.T, app *fiber.App, productID string) int {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stock, _ := body["stock"].(float64)
	return int(stock)
}

func checkoutBody(items []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"items": items,
		"shipping_address": map[string]string{
			"full_name":   "Asha Rao",
			"phone":       "9876543210",
			"line1":       "12 MG Road",
			"city":        "Bengaluru",
			"postal_code": "560001",
			"country":     "India",
		},
		"payment_method": "card",
	}
}

func TestCheckoutReservesAndCancelRestoresStock(t *testing.T) {
	app, db := setupApp(t, "checkout_flow")
	staffToken := registerStaff(t, app, db, "staffer")
	customerToken := registerAndLogin(t, app, "customer1")
	productID := createProduct(t, app, staffToken, 1200, 10)

	// Checkout 3 units: order created, stock drops to 7, totals follow the
	// published rates (18% tax, flat 500 shipping below 5000).
	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken,
		checkoutBody([]map[string]interface{}{{"product_id": productID, "quantity": 3}}))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, 3600.0, order["subtotal"])
	assert.Equal(t, 648.0, order["tax"])
	assert.Equal(t, 500.0, order["shipping"])
	assert.Equal(t, 4748.0, order["total"])
	assert.NotEmpty(t, order["order_number"])
	assert.Equal(t, 7, productStock(t, app, productID))

	// Requesting more than available fails, names the product, and leaves
	// stock untouched.
	resp, errBody := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken,
		checkoutBody([]map[string]interface{}{{"product_id": productID, "quantity": 15}}))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, productID, errBody["product_id"])
	assert.Equal(t, 7.0, errBody["available"])
	assert.Equal(t, 7, productStock(t, app, productID))

	// Cancelling the order puts the 3 units back.
	orderID, _ := order["id"].(string)
	resp, cancelled := doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", customerToken,
		map[string]string{"reason": "changed my mind"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", cancelled["status"])
	assert.Equal(t, 10, productStock(t, app, productID))

	// A second cancellation is rejected, not silently repeated.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", customerToken,
		map[string]string{"reason": "again"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 10, productStock(t, app, productID))
}

func TestStaffLifecycleAndLateCancellation(t *testing.T) {
	app, db := setupApp(t, "lifecycle_flow")
	staffToken := registerStaff(t, app, db, "ops")
	customerToken := registerAndLogin(t, app, "customer2")
	productID := createProduct(t, app, staffToken, 900, 5)

	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken,
		checkoutBody([]map[string]interface{}{{"product_id": productID, "quantity": 2}}))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := order["id"].(string)

	// Staff walk the order through its lifecycle.
	for _, status := range []string{"confirmed", "processing"} {
		resp, body := doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", staffToken,
			map[string]string{"status": status})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, status, body["status"])
	}
	resp, shipped := doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", staffToken,
		map[string]string{"status": "shipped", "tracking_number": "TRK-98765"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TRK-98765", shipped["tracking_number"])

	// Once shipped, the customer can no longer cancel; stock stays with the
	// shipment.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", customerToken,
		map[string]string{"reason": "too late"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 3, productStock(t, app, productID))

	// Delivery settles the COD-style pending payment.
	resp, delivered := doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", staffToken,
		map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", delivered["payment_status"])

	// Returned orders release their stock.
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", staffToken,
		map[string]string{"status": "returned", "note": "damaged"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, productStock(t, app, productID))

	// The admin listing filters by status.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/orders/?status=returned", staffToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuestCheckout(t *testing.T) {
	app, db := setupApp(t, "guest_flow")
	staffToken := registerStaff(t, app, db, "admin3")
	productID := createProduct(t, app, staffToken, 2000, 4)

	// No token required; the shipping address is the contact record.
	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders/guest", "",
		checkoutBody([]map[string]interface{}{{"product_id": productID, "quantity": 1}}))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", order["status"])
	assert.Nil(t, order["user_id"])
	assert.Equal(t, 3, productStock(t, app, productID))

	// Guests cannot redeem loyalty points.
	body := checkoutBody([]map[string]interface{}{{"product_id": productID, "quantity": 1}})
	body["loyalty_points_used"] = 100
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/guest", "", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 3, productStock(t, app, productID))
}

func TestLoyaltyRedemption(t *testing.T) {
	app, db := setupApp(t, "loyalty_flow")
	staffToken := registerStaff(t, app, db, "admin4")
	customerToken := registerAndLogin(t, app, "customer4")
	productID := createProduct(t, app, staffToken, 1000, 10)

	// Seed a 300-point balance directly.
	err := db.Model(&models.User{}).Where("username = ?", "customer4").
		Update("loyalty_points", 300).Error
	assert.NoError(t, err)

	// Redeeming 500 against a 300 balance fails; nothing is created.
	body := checkoutBody([]map[string]interface{}{{"product_id": productID, "quantity": 1}})
	body["loyalty_points_used"] = 500
	resp, errBody := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 300.0, errBody["available"])
	assert.Equal(t, 10, productStock(t, app, productID))

	var user models.User
	assert.NoError(t, db.First(&user, "username = ?", "customer4").Error)
	assert.Equal(t, 300, user.LoyaltyPoints)

	// Redeeming within the balance discounts the order and debits points.
	body["loyalty_points_used"] = 200
	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 200.0, order["discount"])
	// 1000 + 180 + 500 - 200
	assert.Equal(t, 1480.0, order["total"])

	assert.NoError(t, db.First(&user, "username = ?", "customer4").Error)
	// 300 - 200 redeemed + 14 accrued on the 1480 total
	assert.Equal(t, 114, user.LoyaltyPoints)
	assert.Equal(t, 1480.0, user.TotalSpent)
}

func TestCartFlow(t *testing.T) {
	app, db := setupApp(t, "cart_flow")
	staffToken := registerStaff(t, app, db, "admin5")
	customerToken := registerAndLogin(t, app, "customer5")
	productID := createProduct(t, app, staffToken, 800, 20)

	// Adding the same line twice merges quantities.
	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", customerToken,
			map[string]interface{}{"product_id": productID, "quantity": 2})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var items []map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	assert.Len(t, items, 1)
	assert.Equal(t, 4.0, items[0]["quantity"])

	// Checkout drawn from the stored cart clears it.
	body := checkoutBody(nil)
	body["from_cart"] = true
	createResp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, body)
	assert.Equal(t, http.StatusCreated, createResp.StatusCode)
	assert.Equal(t, 3200.0, order["subtotal"])
	assert.Equal(t, 16, productStock(t, app, productID))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	items = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	assert.Empty(t, items)
}

func TestAuthorizationBoundaries(t *testing.T) {
	app, db := setupApp(t, "authz_flow")
	staffToken := registerStaff(t, app, db, "admin6")
	customerToken := registerAndLogin(t, app, "customer6")
	otherToken := registerAndLogin(t, app, "customer7")
	productID := createProduct(t, app, staffToken, 1500, 5)

	// Unauthenticated requests to protected routes are rejected.
	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/orders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Customers cannot reach staff routes.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/products", customerToken,
		map[string]interface{}{"name": "Nope", "price": 1.0, "stock": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A customer cannot read or cancel someone else's order.
	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken,
		checkoutBody([]map[string]interface{}{{"product_id": productID, "quantity": 1}}))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := order["id"].(string)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+orderID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", otherToken,
		map[string]string{"reason": "not mine"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Staff can read any order.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+orderID, staffToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
