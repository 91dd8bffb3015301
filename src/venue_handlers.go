package main

import (
	"errors"
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

func venueHandlers(g *gin.RouterGroup, engine *booking.Engine) *gin.RouterGroup {
	g.
		POST("/venues", func(ctx *gin.Context) {
			var body types.CreateVenueRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pricePerHour, err := decimal.NewFromString(body.PricePerHour)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			serviceFee := decimal.Zero
			if body.ServiceFee != nil {
				serviceFee, err = decimal.NewFromString(*body.ServiceFee)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
			}
			venue := models.Venue{
				Name:         body.Name,
				Location:     body.Location,
				Address:      body.Address,
				SportType:    body.SportType,
				SurfaceType:  body.SurfaceType,
				PricePerHour: pricePerHour,
				ServiceFee:   serviceFee,
				Description:  body.Description,
				ContactPhone: body.ContactPhone,
				ContactEmail: body.ContactEmail,
				IsOpen:       true,
			}
			if body.DiscountPercentage != nil && body.DiscountThreshold != nil {
				pct, err := decimal.NewFromString(*body.DiscountPercentage)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				venue.Discount = &models.Discount{
					Percentage:       pct,
					MinDurationHours: *body.DiscountThreshold,
				}
			}
			for _, oh := range body.OperatingHours {
				venue.OperatingHours = append(venue.OperatingHours, models.OperatingHour{
					Day:       oh.Day,
					StartTime: oh.StartTime,
					EndTime:   oh.EndTime,
				})
			}
			if body.CancellationHours != nil {
				policy := models.CancellationPolicy{WindowHours: *body.CancellationHours}
				if body.CancellationFeePct != nil {
					pct, err := decimal.NewFromString(*body.CancellationFeePct)
					if err != nil {
						ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
						return
					}
					policy.FeePercentage = pct
				}
				venue.CancellationPolicy = &policy
			}
			d := db.GetDb()
			if err := d.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&venue).Error
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": venue})
		}).
		GET("/venues", func(ctx *gin.Context) {
			d := db.GetDb()
			var venues []models.Venue
			if err := d.
				Model(&models.Venue{}).
				Scopes(scopes.NotDeleted).
				Preload("Courts", "is_deleted = ?", false).
				Preload("Discount").
				Find(&venues).
				Error; err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": venues, "count": len(venues)})
		}).
		GET("/venues/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			d := db.GetDb()
			var venue models.Venue
			if err := d.
				Model(&models.Venue{}).
				Scopes(scopes.WithID(params.ID), scopes.NotDeleted).
				Preload("Courts", "is_deleted = ?", false).
				Preload("OperatingHours").
				Preload("Discount").
				Preload("CancellationPolicy").
				First(&venue).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					respondError(ctx, booking.ErrNotFound)
					return
				}
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": venue})
		}).
		DELETE("/venues/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			now := time.Now().UTC()
			d := db.GetDb()
			err := d.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Venue{}).
					Scopes(scopes.WithID(params.ID), scopes.NotDeleted).
					Updates(map[string]any{"is_deleted": true, "deleted_at": now})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return booking.ErrNotFound
				}
				return nil
			})
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/venues/:id/courts", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateCourtRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			court := models.Court{
				VenueID:     params.ID,
				Name:        body.Name,
				CourtType:   body.CourtType,
				MaxCapacity: body.MaxCapacity,
				IsAvailable: true,
			}
			d := db.GetDb()
			err := d.Transaction(func(tx *gorm.DB) error {
				var venueCount int64
				if err := tx.
					Model(&models.Venue{}).
					Scopes(scopes.WithID(params.ID), scopes.NotDeleted).
					Count(&venueCount).
					Error; err != nil {
					return err
				}
				if venueCount == 0 {
					return booking.ErrNotFound
				}
				return tx.Create(&court).Error
			})
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": court})
		}).
		GET("/venues/:id/courts", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			d := db.GetDb()
			var courts []models.Court
			if err := d.
				Model(&models.Court{}).
				Scopes(scopes.NotDeleted).
				Where("venue_id = ?", params.ID).
				Find(&courts).
				Error; err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": courts, "count": len(courts)})
		}).
		GET("/venues/:id/availability", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var query types.AvailabilityQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			date, err := time.Parse(config.DATE_PARSE_FORMAT, query.Date)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if query.Start != "" {
				hours, err := engine.GetMaxDurationForSlot(ctx.Request.Context(), params.ID, date, query.Start, query.CourtID)
				if err != nil {
					respondError(ctx, err)
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"max_duration_hours": hours})
				return
			}
			slots, err := engine.GetAvailableSlots(ctx.Request.Context(), params.ID, date, query.CourtID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": slots, "count": len(slots)})
		})
	return g
}
