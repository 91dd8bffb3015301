package middlewares

import (
	"log"
	"net/http"
	"strconv"

	"terena/src/db"
	"terena/src/models"

	"github.com/gin-gonic/gin"
)

// UserContext resolves the calling user from the X-User-ID header and
// stores it on the request context. Upstream gateways authenticate and
// forward the identity.
func UserContext(ctx *gin.Context) {
	header := ctx.GetHeader("X-User-ID")
	if header == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user header"})
		return
	}
	uid, err := strconv.Atoi(header)
	if err != nil || uid < 1 {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	db := db.GetDb()
	var user models.User
	db.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)
	if uint(uid) != user.ID || user.ID < 1 {
		log.Printf("unknown user: %d\n", uid)
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("email", user.Email)
	ctx.Set("id", user.ID)
}
