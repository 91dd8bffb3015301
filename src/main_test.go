package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"terena/src/booking"
	"terena/src/db"
	"terena/src/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGateway struct{}

func (stubGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, description string) (*booking.PaymentIntent, error) {
	return &booking.PaymentIntent{ID: "pi_stub", ClientSecret: "pi_stub_secret"}, nil
}

func (stubGateway) Refund(ctx context.Context, chargeID string, amountMinor *int64) (*booking.RefundResult, error) {
	return &booking.RefundResult{ID: "re_stub"}, nil
}

type ApiTestSuite struct {
	suite.Suite
	router *gin.Engine
	user   models.User
	venue  models.Venue
}

func (s *ApiTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file:apitest?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(gdb.AutoMigrate(
		&models.User{},
		&models.Venue{},
		&models.OperatingHour{},
		&models.CancellationPolicy{},
		&models.Discount{},
		&models.Court{},
		&models.Booking{},
	))
	db.NewDB(gdb)

	s.user = models.User{Username: "bob", Email: "bob@example.com", Name: "Bob"}
	s.Require().NoError(gdb.Create(&s.user).Error)

	price, _ := decimal.NewFromString("25.00")
	s.venue = models.Venue{
		Name:         "Riverside Courts",
		SportType:    "tennis",
		PricePerHour: price,
		IsOpen:       true,
	}
	s.Require().NoError(gdb.Create(&s.venue).Error)

	engine := booking.NewEngine(stubGateway{}, nil, nil)
	registerValidators()
	s.router = setupRouter()
	registerRoutes(s.router, engine)
}

func (s *ApiTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", strconv.Itoa(int(s.user.ID)))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ApiTestSuite) TestHealthEndpoint() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *ApiTestSuite) TestMissingUserHeaderIsUnauthorized() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ApiTestSuite) TestBookingLifecycle() {
	create := map[string]any{
		"venue_id":          s.venue.ID,
		"booking_date":      "2027-06-01",
		"start_time":        "2027-06-01 10:00:00 +00:00",
		"end_time":          "2027-06-01 12:00:00 +00:00",
		"number_of_players": 2,
	}
	w := s.request(http.MethodPost, "/api/v1/bookings", create)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Booking `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.Equal("pending", string(created.Data.Status))
	s.Equal("50", created.Data.TotalPrice.String())

	// Same interval again conflicts.
	w = s.request(http.MethodPost, "/api/v1/bookings", create)
	s.Equal(http.StatusConflict, w.Code)

	id := created.Data.ID
	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/confirm", id), nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// Confirming twice is rejected.
	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/confirm", id), nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/cancel", id), map[string]any{"reason": "weather"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", id), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.Equal("cancelled", string(created.Data.Status))
	s.Require().NotNil(created.Data.CancellationReason)
	s.Equal("weather", *created.Data.CancellationReason)
}

func (s *ApiTestSuite) TestBookingValidationRejectsPastStart() {
	create := map[string]any{
		"venue_id":          s.venue.ID,
		"booking_date":      "2020-06-01",
		"start_time":        "2020-06-01 10:00:00 +00:00",
		"end_time":          "2020-06-01 12:00:00 +00:00",
		"number_of_players": 2,
	}
	w := s.request(http.MethodPost, "/api/v1/bookings", create)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ApiTestSuite) TestBookingNotFound() {
	w := s.request(http.MethodGet, "/api/v1/bookings/99999", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ApiTestSuite) TestBookingListRejectsUnknownSortField() {
	w := s.request(http.MethodGet, "/api/v1/bookings?order_by=password", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ApiTestSuite) TestBookingList() {
	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/bookings?venue_id=%d&order_by=created_at&sort=desc", s.venue.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var result struct {
		Data  []models.Booking `json:"data"`
		Count int64            `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.GreaterOrEqual(result.Count, int64(0))
}

func (s *ApiTestSuite) TestVenueEndpoints() {
	w := s.request(http.MethodPost, "/api/v1/venues", map[string]any{
		"name":           "North Hall",
		"sport_type":     "badminton",
		"price_per_hour": "18.00",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Venue `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.NotZero(created.Data.ID)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/venues/%d/courts", created.Data.ID), map[string]any{
		"name": "Court A",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d", created.Data.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/venues/%d", created.Data.ID), nil)
	s.Require().Equal(http.StatusNoContent, w.Code)

	// The tombstone hides the venue from reads.
	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d", created.Data.ID), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ApiTestSuite) TestAvailabilityEndpoint() {
	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d/availability?date=2027-07-01", s.venue.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Data  []string `json:"data"`
		Count int      `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Equal(14, result.Count)
	s.Equal("08:00", result.Data[0])

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d/availability?date=2027-07-01&start=08:00", s.venue.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var md struct {
		MaxDurationHours int `json:"max_duration_hours"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &md))
	s.Equal(14, md.MaxDurationHours)
}

func (s *ApiTestSuite) TestAvailabilityUnknownVenue() {
	w := s.request(http.MethodGet, "/api/v1/venues/99999/availability?date=2027-07-01", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ApiTestSuite) TestAvailabilityRejectsMalformedStart() {
	for _, start := range []string{"garbage", "18", "25:00"} {
		w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d/availability?date=2027-07-01&start=%s", s.venue.ID, start), nil)
		s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func (s *ApiTestSuite) TestVenueOperatingHoursDriveAvailability() {
	// 2027-07-01 falls on a Thursday.
	w := s.request(http.MethodPost, "/api/v1/venues", map[string]any{
		"name":           "Morning Club",
		"sport_type":     "padel",
		"price_per_hour": "20.00",
		"operating_hours": []map[string]any{
			{"day": "Thursday", "start_time": "09:00", "end_time": "13:00"},
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Venue `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/venues/%d/availability?date=2027-07-01", created.Data.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Data  []string `json:"data"`
		Count int      `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Equal(4, result.Count)
	s.Equal([]string{"09:00", "10:00", "11:00", "12:00"}, result.Data)
}

func (s *ApiTestSuite) TestPaymentIntentEndpoint() {
	create := map[string]any{
		"venue_id":          s.venue.ID,
		"booking_date":      "2027-08-01",
		"start_time":        "2027-08-01 09:00:00 +00:00",
		"end_time":          "2027-08-01 10:00:00 +00:00",
		"number_of_players": 2,
	}
	w := s.request(http.MethodPost, "/api/v1/bookings", create)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Booking `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = s.request(http.MethodPost, "/api/v1/payments/intent", map[string]any{
		"booking_id": created.Data.ID,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var intent struct {
		IntentID     string `json:"intent_id"`
		ClientSecret string `json:"client_secret"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &intent))
	s.Equal("pi_stub", intent.IntentID)
}

func TestApiSuite(t *testing.T) {
	suite.Run(t, new(ApiTestSuite))
}
