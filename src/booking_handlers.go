package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"terena/src/booking"
	"terena/src/config"
	"terena/src/db"
	"terena/src/models"
	"terena/src/models/scopes"
	"terena/src/types"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// respondError maps engine errors onto HTTP statuses. Unknown errors stay
// opaque 500s so internals never leak to the client.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrAlreadyPaid),
		errors.Is(err, booking.ErrNotPaid),
		errors.Is(err, booking.ErrAlreadyRefunded):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrGateway):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidInterval),
		errors.Is(err, booking.ErrInvalidAmount):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("unhandled error: %s\n", err.Error())
		ctx.Status(http.StatusInternalServerError)
	}
}

func bookingHandlers(g *gin.RouterGroup, engine *booking.Engine) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			bookingDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.BookingDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.EndTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			created, err := engine.Create(ctx.Request.Context(), booking.CreateParams{
				UserID:          userId,
				VenueID:         body.VenueID,
				CourtID:         body.CourtID,
				BookingDate:     bookingDate,
				StartTime:       startTime,
				EndTime:         endTime,
				NumberOfPlayers: body.NumberOfPlayers,
				IsGroupBooking:  body.IsGroupBooking,
				PaymentMethod:   body.PaymentMethod,
				PaymentIntentID: body.PaymentIntentID,
				Notes:           body.Notes,
			})
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": created})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			var filters types.BookingQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			col, ok := filters.SortColumn()
			if !ok {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown order_by field"})
				return
			}
			dir, ok := filters.SortDir()
			if !ok {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "sort must be asc or desc"})
				return
			}
			page := filters.Page
			if page < 1 {
				page = 1
			}
			pageSize := filters.PageSize
			if pageSize < 1 {
				pageSize = 20
			}
			if pageSize > 100 {
				pageSize = 100
			}
			d := db.GetDb()
			var bookings []models.Booking
			var count int64
			err := d.Transaction(func(tx *gorm.DB) error {
				q := tx.Model(&models.Booking{}).Scopes(scopes.NotDeleted)
				if filters.BookingNumber != "" {
					q = q.Where("booking_number = ?", filters.BookingNumber)
				}
				if filters.UserID != nil {
					q = q.Where("user_id = ?", *filters.UserID)
				}
				if filters.VenueID != nil {
					q = q.Where("venue_id = ?", *filters.VenueID)
				}
				if filters.CourtID != nil {
					q = q.Where("court_id = ?", *filters.CourtID)
				}
				if filters.Status != "" {
					q = q.Where("status = ?", filters.Status)
				}
				if filters.PaymentStatus != "" {
					q = q.Where("payment_status = ?", filters.PaymentStatus)
				}
				if filters.DateFrom != "" {
					from, err := time.Parse(config.DATE_PARSE_FORMAT, filters.DateFrom)
					if err != nil {
						return booking.ErrInvalidInterval
					}
					q = q.Where("booking_date >= ?", from)
				}
				if filters.DateTo != "" {
					to, err := time.Parse(config.DATE_PARSE_FORMAT, filters.DateTo)
					if err != nil {
						return booking.ErrInvalidInterval
					}
					q = q.Where("booking_date <= ?", to)
				}
				if filters.IsRefunded != nil {
					q = q.Where("is_refunded = ?", *filters.IsRefunded)
				}
				if err := q.Count(&count).Error; err != nil {
					return err
				}
				return q.
					Order(col + " " + dir).
					Offset((page - 1) * pageSize).
					Limit(pageSize).
					Find(&bookings).
					Error
			})
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, types.PagedResult[models.Booking]{ResultList: bookings, Count: count})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			d := db.GetDb()
			var bk models.Booking
			if err := d.
				Model(&models.Booking{}).
				Scopes(scopes.WithID(params.ID), scopes.NotDeleted).
				Preload("Venue").
				Preload("Court").
				Preload("User").
				First(&bk).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					respondError(ctx, booking.ErrNotFound)
					return
				}
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bk})
		}).
		PUT("/bookings/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			bk, err := engine.Confirm(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bk})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			bk, err := engine.Cancel(ctx.Request.Context(), params.ID, body.Reason)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bk})
		}).
		PUT("/bookings/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			bk, err := engine.Complete(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bk})
		}).
		PUT("/bookings/:id/expire", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			bk, err := engine.Expire(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bk})
		}).
		POST("/bookings/:id/payment", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.ProcessPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			bk, err := engine.ProcessPayment(ctx.Request.Context(), params.ID, body.TransactionID, body.PaymentMethod)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bk})
		}).
		POST("/bookings/:id/refund", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			// Missing body means a full refund.
			var body types.RefundBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var amount *decimal.Decimal
			if body.Amount != nil {
				parsed, err := decimal.NewFromString(*body.Amount)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				amount = &parsed
			}
			bk, err := engine.Refund(ctx.Request.Context(), params.ID, amount)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bk})
		})
	return g
}
