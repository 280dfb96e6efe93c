package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studiobooking/internal/calendar"
	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/email"
	"studiobooking/internal/invoicing"
	"studiobooking/internal/middleware"
	"studiobooking/internal/modules/admin"
	"studiobooking/internal/modules/auth"
	"studiobooking/internal/modules/booking"
	"studiobooking/internal/modules/catalog"
	"studiobooking/internal/modules/feed"
	"studiobooking/internal/modules/lifecycle"
	jwtsvc "studiobooking/internal/pkg/jwt"
	"studiobooking/internal/repository"
)

// Stand-ins for the external agents so the full flow runs against the real
// router, services and an in-memory SQLite database.

type fakeInvoicer struct {
	issued   []invoicing.Request
	reversed []string
	seq      int
}

func (f *fakeInvoicer) Configured() bool { return true }

func (f *fakeInvoicer) Issue(_ context.Context, req invoicing.Request) (invoicing.Document, error) {
	f.issued = append(f.issued, req)
	f.seq++
	prefix := "E-TST"
	if req.Kind == invoicing.KindProforma {
		prefix = "D-TST"
	}
	number := fmt.Sprintf("%s-%d", prefix, f.seq)
	return invoicing.Document{Number: number, URL: "https://invoices.test/" + number}, nil
}

func (f *fakeInvoicer) Reverse(_ context.Context, invoiceNumber string) (string, error) {
	f.reversed = append(f.reversed, invoiceNumber)
	return "SZ-" + invoiceNumber, nil
}

type sentMail struct {
	To       string
	Template email.Template
	Data     email.Data
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Configured() bool  { return true }
func (f *fakeMailer) AdminAddr() string { return "admin@studio.test" }

func (f *fakeMailer) Send(_ context.Context, to string, tpl email.Template, data email.Data) error {
	f.sent = append(f.sent, sentMail{To: to, Template: tpl, Data: data})
	return nil
}

type fakeCalendar struct {
	synced []calendar.Action
}

func (f *fakeCalendar) Sync(_ context.Context, b *domain.Booking, action calendar.Action) (calendar.Result, error) {
	f.synced = append(f.synced, action)
	return calendar.Result{EventID: fmt.Sprintf("booking-%d", b.ID)}, nil
}

var budapest, _ = time.LoadLocation("Europe/Budapest")

type testSuite struct {
	router   *gin.Engine
	db       *gorm.DB
	invoicer *fakeInvoicer
	mailer   *fakeMailer
	cal      *fakeCalendar
}

type apiResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *apiError      `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupSuite(t *testing.T) *testSuite {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	j := jwtsvc.New("e2e_secret_key_32_characters_long", time.Hour)

	invoicer := &fakeInvoicer{}
	mailer := &fakeMailer{}
	cal := &fakeCalendar{}

	lifecycleService := lifecycle.NewService(
		bookingRepo, policyRepo, invoicer, mailer, cal, budapest, 8, t.Logf,
	)

	hub := feed.NewHub()
	t.Cleanup(hub.Close)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)
	bookingService := booking.NewService(bookingRepo, catalogRepo, lifecycleService, budapest)
	bookingHandler := booking.NewHandler(bookingService)
	catalogService := catalog.NewService(catalogRepo, bookingRepo, budapest)
	catalogHandler := catalog.NewHandler(catalogService)
	adminService := admin.NewService(bookingRepo, lifecycleService, policyRepo, catalogRepo, hub, t.Logf)
	adminHandler := admin.NewHandler(adminService)

	r := gin.New()
	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1)
	catalogHandler.RegisterRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(j))
	authHandler.RegisterProtectedRoutes(protected)
	bookingHandler.RegisterRoutes(protected)

	adminGroup := protected.Group("/admin")
	adminGroup.Use(middleware.AdminOnly())
	adminHandler.RegisterRoutes(adminGroup)

	// One bookable slot is enough for the flows.
	require.NoError(t, db.Create(&domain.TimeSlot{
		Name:      "Délelőtti fotózás",
		StartTime: "10:00",
		EndTime:   "13:00",
		Price:     70000,
		Active:    true,
	}).Error)

	return &testSuite{router: r, db: db, invoicer: invoicer, mailer: mailer, cal: cal}
}

func (s *testSuite) request(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, *apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "status %d, body %s", w.Code, w.Body.String())
	return w, &resp
}

func (s *testSuite) registerAndLogin(t *testing.T, name, emailAddr string, isAdmin bool) string {
	t.Helper()

	w, _ := s.request(t, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name":     name,
		"email":    emailAddr,
		"password": "titkos123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	if isAdmin {
		err := s.db.Model(&domain.User{}).Where("email = ?", emailAddr).Update("role", "admin").Error
		require.NoError(t, err)
	}

	w, resp := s.request(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    emailAddr,
		"password": "titkos123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := resp.Data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func bookingField(t *testing.T, resp *apiResponse, field string) any {
	t.Helper()
	b, ok := resp.Data["booking"].(map[string]any)
	require.True(t, ok, "no booking in response: %+v", resp.Data)
	return b[field]
}

func TestBookingLifecycleFlow(t *testing.T) {
	suite := setupSuite(t)

	customerToken := suite.registerAndLogin(t, "Kovács Kata", "kata@example.com", false)
	adminToken := suite.registerAndLogin(t, "Stúdió Admin", "admin@example.com", true)

	// Two days out hits the 70% tier of the default policy.
	bookingDate := time.Now().In(budapest).AddDate(0, 0, 2).Format("2006-01-02")

	var bookingID int64
	t.Run("customer creates a booking", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodPost, "/api/v1/bookings", map[string]any{
			"booking_date": bookingDate,
			"time_slot_id": 1,
		}, customerToken)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "pending", bookingField(t, resp, "status"))
		assert.Equal(t, float64(70000), bookingField(t, resp, "total_price"))
		bookingID = int64(bookingField(t, resp, "id").(float64))
	})

	t.Run("admin confirms, proforma goes out", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodPut,
			fmt.Sprintf("/api/v1/admin/bookings/%d/status", bookingID),
			map[string]any{"status": "confirmed"}, adminToken)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "confirmed", bookingField(t, resp, "status"))
		assert.Contains(t, resp.Data["message"], "Díjbekérő")

		require.Len(t, suite.invoicer.issued, 1)
		assert.Equal(t, invoicing.KindProforma, suite.invoicer.issued[0].Kind)
		require.NotEmpty(t, suite.mailer.sent)
		assert.Equal(t, "kata@example.com", suite.mailer.sent[0].To)
	})

	t.Run("admin marks the booking paid", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodPut,
			fmt.Sprintf("/api/v1/admin/bookings/%d/status", bookingID),
			map[string]any{"status": "paid"}, adminToken)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "paid", bookingField(t, resp, "status"))
		assert.NotEmpty(t, bookingField(t, resp, "invoice_number"))
	})

	t.Run("quote shows the 70% tier", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodGet,
			fmt.Sprintf("/api/v1/bookings/%d/cancellation-quote", bookingID), nil, customerToken)

		require.Equal(t, http.StatusOK, w.Code)
		quote, ok := resp.Data["quote"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(70), quote["fee_percent"])
		assert.Equal(t, float64(49000), quote["cancellation_fee"])
		assert.Equal(t, float64(21000), quote["refund"])
		assert.Equal(t, true, quote["cancellable"])
	})

	t.Run("customer cancels the paid booking", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodPost,
			fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID),
			map[string]any{"reason": "családi ok"}, customerToken)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cancelled", bookingField(t, resp, "status"))
		assert.Equal(t, float64(49000), bookingField(t, resp, "cancellation_fee"))
		assert.Contains(t, resp.Data["message"], "Sztornó")
		assert.Contains(t, resp.Data["message"], "Lemondási díj")

		// Paid invoice got reversed and the fee invoice was issued on top.
		require.Len(t, suite.invoicer.reversed, 1)
		last := suite.invoicer.issued[len(suite.invoicer.issued)-1]
		assert.Equal(t, invoicing.KindFee, last.Kind)
		assert.True(t, last.MarkPaid)
	})

	t.Run("cancelled booking cannot be cancelled again", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodPost,
			fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID), nil, customerToken)

		require.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_CANCELLABLE", resp.Error.Code)
	})
}

func TestDoubleBookingRejected(t *testing.T) {
	suite := setupSuite(t)

	first := suite.registerAndLogin(t, "Első Vendég", "elso@example.com", false)
	second := suite.registerAndLogin(t, "Második Vendég", "masodik@example.com", false)

	bookingDate := time.Now().In(budapest).AddDate(0, 0, 5).Format("2006-01-02")
	body := map[string]any{"booking_date": bookingDate, "time_slot_id": 1}

	w, _ := suite.request(t, http.MethodPost, "/api/v1/bookings", body, first)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := suite.request(t, http.MethodPost, "/api/v1/bookings", body, second)
	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SLOT_TAKEN", resp.Error.Code)
}

func TestAuthAndRoleGuards(t *testing.T) {
	suite := setupSuite(t)
	customerToken := suite.registerAndLogin(t, "Vendég", "vendeg@example.com", false)

	t.Run("bookings need a token", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodGet, "/api/v1/bookings", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.NotNil(t, resp.Error)
	})

	t.Run("admin surface is role gated", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodGet, "/api/v1/admin/bookings", nil, customerToken)
		require.Equal(t, http.StatusForbidden, w.Code)
		require.NotNil(t, resp.Error)
	})

	t.Run("catalog is public", func(t *testing.T) {
		w, resp := suite.request(t, http.MethodGet, "/api/v1/time-slots", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
