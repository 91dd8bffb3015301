package main

import (
	"net/http"

	"terena/src/booking"
	"terena/src/types"

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup, engine *booking.Engine) *gin.RouterGroup {
	g.
		POST("/payments/intent", func(ctx *gin.Context) {
			var body types.CreatePaymentIntentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			intent, err := engine.CreateIntent(ctx.Request.Context(), body.BookingID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"intent_id":     intent.ID,
				"client_secret": intent.ClientSecret,
			})
		})
	return g
}
